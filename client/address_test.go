package client_test

import (
	"testing"

	"github.com/0rlych1kk4/quantum-safe-multisig/client"
	"github.com/stretchr/testify/require"
)

func TestSanitizeAddressDomain(t *testing.T) {
	address, err := client.SanitizeAddress("tcp://gateway-1:7589")
	require.NoError(t, err, "failed to sanitize fqdn address")

	require.Equal(t, "gateway-1:7589", address)
}

func TestSanitizeAddressIPv4(t *testing.T) {
	address, err := client.SanitizeAddress("tcp://10.0.0.1:7589")
	require.NoError(t, err, "failed to sanitize ipv4 address")

	require.Equal(t, "10.0.0.1:7589", address)
}

func TestSanitizeAddressIPv6(t *testing.T) {
	for addr, expected := range map[string]string{
		"tcp://[2001:db8:3333:4444:5555:6666:7777:8888]:7589": "[2001:db8:3333:4444:5555:6666:7777:8888]:7589",
		"tcp://[::]:7589":                "[::]:7589",
		"tcp://[::1234:5678]:7589":       "[::1234:5678]:7589",
		"tcp://[2001:db8::]:7589":        "[2001:db8::]:7589",
		"tcp://[2001:db8::1234:5678]:80": "[2001:db8::1234:5678]:80",
	} {
		address, err := client.SanitizeAddress(addr)
		require.NoError(t, err, "failed to sanitize ipv6 address")

		require.Equal(t, expected, address)
	}
}

func TestSanitizeAddressMissingPort(t *testing.T) {
	_, err := client.SanitizeAddress("tcp://gateway-1")
	require.Error(t, err)
}
