package cmd

import (
	"github.com/0rlych1kk4/quantum-safe-multisig/signer"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// registryFromConfig rebuilds the owner registry from the configured
// owners and their key files. The key files are the authoritative
// source of public keys; the wallet state file only caches them.
func registryFromConfig() (*signer.OwnerRegistry, error) {
	registryKeys := make(map[string]pqc.PublicKey, len(config.Config.Owners))
	for _, o := range config.Config.Owners {
		keyFile, err := config.KeyFileExists(o.Name)
		if err != nil {
			return nil, err
		}
		key, err := signer.LoadOwnerKey(keyFile)
		if err != nil {
			return nil, err
		}
		registryKeys[o.Name] = key.PublicKey
	}
	return signer.NewOwnerRegistry(registryKeys, config.Config.Threshold)
}

// loadWalletFromConfig loads the wallet state bound to the configured
// transaction message, creating fresh state if none exists yet.
func loadWalletFromConfig() (*signer.Wallet, error) {
	registry, err := registryFromConfig()
	if err != nil {
		return nil, err
	}
	return signer.LoadOrCreateWallet(config.WalletStateFile(), registry, []byte(config.Config.Message))
}
