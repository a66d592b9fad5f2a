package signer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func validWalletConfig() Config {
	return Config{
		Owners: OwnersConfig{
			{Name: "Alice"},
			{Name: "Bob"},
			{Name: "Charlie"},
		},
		Threshold: 2,
		Message:   "Transfer 10 coins",
	}
}

func TestValidateWalletConfig(t *testing.T) {
	config := validWalletConfig()
	require.NoError(t, config.ValidateWalletConfig())

	testCases := []struct {
		name      string
		mutate    func(c *Config)
		expectErr string
	}{
		{
			name:      "no owners",
			mutate:    func(c *Config) { c.Owners = nil },
			expectErr: "need to have owners configured",
		},
		{
			name:      "empty owner name",
			mutate:    func(c *Config) { c.Owners[1].Name = "" },
			expectErr: "owner name can't be empty",
		},
		{
			name:      "duplicate owner",
			mutate:    func(c *Config) { c.Owners[2].Name = "Alice" },
			expectErr: "found duplicate owner in config: Alice",
		},
		{
			name:      "threshold zero",
			mutate:    func(c *Config) { c.Threshold = 0 },
			expectErr: "threshold (0) must be between 1 and number of owners (3)",
		},
		{
			name:      "threshold above owner count",
			mutate:    func(c *Config) { c.Threshold = 4 },
			expectErr: "threshold (4) must be between 1 and number of owners (3)",
		},
		{
			name:      "empty message",
			mutate:    func(c *Config) { c.Message = "" },
			expectErr: "transaction message can't be empty",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			config := validWalletConfig()
			tc.mutate(&config)
			err := config.ValidateWalletConfig()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expectErr)
		})
	}
}

func validGatewayConfig() Config {
	config := validWalletConfig()
	config.GatewayAddr = "tcp://127.0.0.1:7589"
	config.GatewayTokens = GatewayTokensConfig{
		{Owner: "Alice", PIN: "2468"},
		{Owner: "Bob", PIN: "1357"},
	}
	return config
}

func TestValidateGatewayConfig(t *testing.T) {
	config := validGatewayConfig()
	require.NoError(t, config.ValidateGatewayConfig())

	testCases := []struct {
		name      string
		mutate    func(c *Config)
		expectErr string
	}{
		{
			name:      "missing address",
			mutate:    func(c *Config) { c.GatewayAddr = "" },
			expectErr: "gateway-addr can't be empty",
		},
		{
			name:      "unparseable address",
			mutate:    func(c *Config) { c.GatewayAddr = "tcp://127.0.0.1" },
			expectErr: "failed to parse gateway address",
		},
		{
			name:      "no tokens",
			mutate:    func(c *Config) { c.GatewayTokens = nil },
			expectErr: "need to have gateway-tokens configured",
		},
		{
			name:      "token without owner",
			mutate:    func(c *Config) { c.GatewayTokens[0].Owner = "" },
			expectErr: "gateway token owner can't be empty",
		},
		{
			name:      "duplicate token",
			mutate:    func(c *Config) { c.GatewayTokens[1].Owner = "Alice" },
			expectErr: "found duplicate gateway token for owner: Alice",
		},
		{
			name:      "token without PIN",
			mutate:    func(c *Config) { c.GatewayTokens[1].PIN = "" },
			expectErr: "gateway token for owner Bob has no PIN configured",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			config := validGatewayConfig()
			tc.mutate(&config)
			err := config.ValidateGatewayConfig()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expectErr)
		})
	}
}

func TestConfigYamlRoundTrip(t *testing.T) {
	config := validGatewayConfig()
	config.WalletFile = "/var/qsm/wallet.json"
	config.KeyDir = "/var/qsm/keys"
	config.DebugAddr = "127.0.0.1:8543"

	decoded := Config{}
	require.NoError(t, yaml.Unmarshal(config.MustMarshalYaml(), &decoded))
	require.Equal(t, config, decoded)
}

func TestRuntimeConfigPaths(t *testing.T) {
	home := filepath.Join("/home", "user", ".qsm")
	runtimeConfig := RuntimeConfig{
		HomeDir:    home,
		ConfigFile: filepath.Join(home, "config.yaml"),
		StateDir:   filepath.Join(home, "state"),
		PidFile:    filepath.Join(home, "qsm.pid"),
		Config:     validWalletConfig(),
	}

	require.Equal(t, filepath.Join(home, "keys"), runtimeConfig.KeyDirPath())
	require.Equal(t, filepath.Join(home, "keys", "Alice_key.json"), runtimeConfig.KeyFilePath("Alice"))
	require.Equal(t, filepath.Join(home, "state", "wallet.json"), runtimeConfig.WalletStateFile())

	runtimeConfig.Config.KeyDir = "/var/qsm-keys"
	runtimeConfig.Config.WalletFile = "/var/qsm/wallet.json"
	runtimeConfig.Config.Owners[0].KeyFile = "/secrets/alice.json"

	require.Equal(t, "/var/qsm-keys", runtimeConfig.KeyDirPath())
	require.Equal(t, "/secrets/alice.json", runtimeConfig.KeyFilePath("Alice"))
	require.Equal(t, filepath.Join("/var/qsm-keys", "Bob_key.json"), runtimeConfig.KeyFilePath("Bob"))
	require.Equal(t, "/var/qsm/wallet.json", runtimeConfig.WalletStateFile())

	token := GatewayTokenConfig{Owner: "Bob"}
	require.Equal(t, filepath.Join("/var/qsm-keys", "Bob_key.json"), runtimeConfig.GatewayKeyFilePath(token))
	token.KeyFile = "/secrets/bob-hsm.json"
	require.Equal(t, "/secrets/bob-hsm.json", runtimeConfig.GatewayKeyFilePath(token))
}

func TestOwnersFromFlag(t *testing.T) {
	owners, err := OwnersFromFlag("Alice,Bob,Charlie")
	require.NoError(t, err)
	require.Equal(t, OwnersConfig{
		{Name: "Alice"},
		{Name: "Bob"},
		{Name: "Charlie"},
	}, owners)

	owners, err = OwnersFromFlag(" Alice , Bob ")
	require.NoError(t, err)
	require.Equal(t, OwnersConfig{
		{Name: "Alice"},
		{Name: "Bob"},
	}, owners)

	_, err = OwnersFromFlag("Alice,,Bob")
	require.Error(t, err)
	require.Contains(t, err.Error(), "owner name can't be empty")

	_, err = OwnersFromFlag("Alice,Bob,Alice")
	require.Error(t, err)
	require.Contains(t, err.Error(), "found duplicate owner in config: Alice")
}

func TestPINsFromFlag(t *testing.T) {
	pins, err := PINsFromFlag([]string{"Alice=2468", "Bob=1357"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"Alice": "2468",
		"Bob":   "1357",
	}, pins)

	// only the first separator splits, PINs may contain '='
	pins, err = PINsFromFlag([]string{"Alice=a=b"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Alice": "a=b"}, pins)

	for _, invalid := range []string{"Alice", "Alice=", "=2468"} {
		_, err = PINsFromFlag([]string{invalid})
		require.Error(t, err)
		require.Contains(t, err.Error(), "expected format: {owner}={pin}")
	}
}

func TestWriteConfigFile(t *testing.T) {
	runtimeConfig := RuntimeConfig{
		ConfigFile: filepath.Join(t.TempDir(), "config.yaml"),
		Config:     validGatewayConfig(),
	}
	require.NoError(t, runtimeConfig.WriteConfigFile())

	info, err := os.Stat(runtimeConfig.ConfigFile)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	bz, err := os.ReadFile(runtimeConfig.ConfigFile)
	require.NoError(t, err)
	decoded := Config{}
	require.NoError(t, yaml.Unmarshal(bz, &decoded))
	require.Equal(t, runtimeConfig.Config, decoded)
}

func TestKeyFileExists(t *testing.T) {
	dir := t.TempDir()
	runtimeConfig := RuntimeConfig{
		HomeDir: dir,
		Config:  validWalletConfig(),
	}

	_, err := runtimeConfig.KeyFileExists("Alice")
	require.Error(t, err)
	require.Contains(t, err.Error(), "file doesn't exist at path")

	require.NoError(t, os.MkdirAll(runtimeConfig.KeyDirPath(), 0700))
	keyFile := runtimeConfig.KeyFilePath("Alice")
	require.NoError(t, os.WriteFile(keyFile, []byte("{}"), 0600))

	found, err := runtimeConfig.KeyFileExists("Alice")
	require.NoError(t, err)
	require.Equal(t, keyFile, found)
}
