// Package client holds address helpers shared by the wallet CLI and
// the gateway daemon.
package client

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// SanitizeAddress reduces a URL like tcp://host:port to host:port
// suitable for dialing.
func SanitizeAddress(address string) (string, error) {
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("error parsing gateway URL: %w", err)
	}

	hostname, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", fmt.Errorf("error splitting host port from parsed URL: %w", err)
	}

	if strings.Contains(hostname, ":") {
		// IPv6 Addreses need to be wrapped in brackets
		return fmt.Sprintf("[%s]:%s", hostname, port), nil
	}
	return fmt.Sprintf("%s:%s", hostname, port), nil
}
