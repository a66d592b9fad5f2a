package signer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/0rlych1kk4/quantum-safe-multisig/client"
)

// Config maps to the on-disk config.yaml format.
type Config struct {
	Owners        OwnersConfig        `json:"owners" yaml:"owners"`
	Threshold     int                 `json:"threshold" yaml:"threshold"`
	Message       string              `json:"message" yaml:"message"`
	WalletFile    string              `json:"wallet-file,omitempty" yaml:"wallet-file,omitempty"`
	KeyDir        string              `json:"key-dir,omitempty" yaml:"key-dir,omitempty"`
	GatewayAddr   string              `json:"gateway-addr,omitempty" yaml:"gateway-addr,omitempty"`
	GatewayTokens GatewayTokensConfig `json:"gateway-tokens,omitempty" yaml:"gateway-tokens,omitempty"`
	DebugAddr     string              `json:"debug-addr,omitempty" yaml:"debug-addr,omitempty"`
}

// OwnerConfig names one wallet owner. KeyFile overrides the default
// key file location for that owner.
type OwnerConfig struct {
	Name    string `json:"name" yaml:"name"`
	KeyFile string `json:"key-file,omitempty" yaml:"key-file,omitempty"`
}

func (c *Config) OwnerNames() (out []string) {
	for _, o := range c.Owners {
		out = append(out, o.Name)
	}
	return out
}

func (c *Config) MustMarshalYaml() []byte {
	out, err := yaml.Marshal(c)
	if err != nil {
		panic(err)
	}
	return out
}

func (c *Config) ValidateWalletConfig() error {
	if len(c.Owners) == 0 {
		return fmt.Errorf("need to have owners configured for the wallet")
	}
	if err := c.Owners.Validate(); err != nil {
		return err
	}
	if c.Threshold < 1 || c.Threshold > len(c.Owners) {
		return fmt.Errorf("threshold (%d) must be between 1 and number of owners (%d), inclusive",
			c.Threshold, len(c.Owners))
	}
	if c.Message == "" {
		return fmt.Errorf("transaction message can't be empty")
	}
	return nil
}

func (c *Config) ValidateGatewayConfig() error {
	if c.GatewayAddr == "" {
		return fmt.Errorf("gateway-addr can't be empty")
	}
	if _, err := client.SanitizeAddress(c.GatewayAddr); err != nil {
		return fmt.Errorf("failed to parse gateway address: %w", err)
	}
	if len(c.GatewayTokens) == 0 {
		return fmt.Errorf("need to have gateway-tokens configured for the gateway")
	}
	return c.GatewayTokens.Validate()
}

type OwnersConfig []OwnerConfig

func (owners OwnersConfig) Validate() error {
	seen := make(map[string]bool, len(owners))
	for _, o := range owners {
		if o.Name == "" {
			return fmt.Errorf("owner name can't be empty")
		}
		if seen[o.Name] {
			return fmt.Errorf("found duplicate owner in config: %s", o.Name)
		}
		seen[o.Name] = true
	}
	return nil
}

// GatewayTokenConfig is one owner identity served by the signing
// gateway. PINs are provided by the operator at gateway startup, via
// config edit or the --pin flag. They are never written by init.
type GatewayTokenConfig struct {
	Owner   string `json:"owner" yaml:"owner"`
	PIN     string `json:"pin,omitempty" yaml:"pin,omitempty"`
	KeyFile string `json:"key-file,omitempty" yaml:"key-file,omitempty"`
}

type GatewayTokensConfig []GatewayTokenConfig

func (tokens GatewayTokensConfig) Validate() error {
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if t.Owner == "" {
			return fmt.Errorf("gateway token owner can't be empty")
		}
		if seen[t.Owner] {
			return fmt.Errorf("found duplicate gateway token for owner: %s", t.Owner)
		}
		seen[t.Owner] = true
		if t.PIN == "" {
			return fmt.Errorf("gateway token for owner %s has no PIN configured", t.Owner)
		}
	}
	return nil
}

// OwnersFromFlag parses a comma separated owner name list.
func OwnersFromFlag(arg string) (OwnersConfig, error) {
	var out OwnersConfig
	for _, name := range strings.Split(arg, ",") {
		out = append(out, OwnerConfig{Name: strings.TrimSpace(name)})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// PINsFromFlag parses repeated {owner}={pin} flag values.
func PINsFromFlag(pins []string) (map[string]string, error) {
	out := make(map[string]string, len(pins))
	for _, p := range pins {
		ps := strings.SplitN(p, "=", 2)
		if len(ps) != 2 || ps[0] == "" || ps[1] == "" {
			return nil, fmt.Errorf("invalid pin string %s, expected format: {owner}={pin}", p)
		}
		out[ps[0]] = ps[1]
	}
	return out, nil
}

type RuntimeConfig struct {
	HomeDir    string
	ConfigFile string
	StateDir   string
	PidFile    string
	Config     Config
}

func (c RuntimeConfig) KeyDirPath() string {
	if kd := c.Config.KeyDir; kd != "" {
		return kd
	}
	return filepath.Join(c.HomeDir, "keys")
}

// KeyFilePath returns the key file location for an owner, honoring a
// per-owner override from the config.
func (c RuntimeConfig) KeyFilePath(owner string) string {
	for _, o := range c.Config.Owners {
		if o.Name == owner && o.KeyFile != "" {
			return o.KeyFile
		}
	}
	return filepath.Join(c.KeyDirPath(), fmt.Sprintf("%s_key.json", owner))
}

// GatewayKeyFilePath returns the key file backing a gateway token,
// falling back to the owner's regular key file.
func (c RuntimeConfig) GatewayKeyFilePath(token GatewayTokenConfig) string {
	if token.KeyFile != "" {
		return token.KeyFile
	}
	return c.KeyFilePath(token.Owner)
}

func (c RuntimeConfig) WalletStateFile() string {
	if wf := c.Config.WalletFile; wf != "" {
		return wf
	}
	return filepath.Join(c.StateDir, "wallet.json")
}

func (c RuntimeConfig) WriteConfigFile() error {
	return os.WriteFile(c.ConfigFile, c.Config.MustMarshalYaml(), 0600)
}

func fileExists(file string) error {
	stat, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file doesn't exist at path (%s): %w", file, err)
		}
		return fmt.Errorf("unexpected error checking file existence (%s): %w", file, err)
	}
	if stat.IsDir() {
		return fmt.Errorf("path is not a file (%s)", file)
	}

	return nil
}

func (c RuntimeConfig) KeyFileExists(owner string) (string, error) {
	keyFile := c.KeyFilePath(owner)
	return keyFile, fileExists(keyFile)
}
