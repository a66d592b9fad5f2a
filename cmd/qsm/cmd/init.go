package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

func init() {
	rootCmd.AddCommand(initCmd())
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Initialize the wallet: config file, owner key pairs, empty signature ledger",
		Long: "Initialize the configuration file and home directory, generate a SPHINCS+\n" +
			"key pair for every owner, and write the initial wallet state with an empty\n" +
			"signature ledger. Gateway token PINs are never written here; provide them\n" +
			"when starting the gateway.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdFlags := cmd.Flags()
			overwrite, _ := cmdFlags.GetBool("overwrite")

			if _, err := os.Stat(config.ConfigFile); !os.IsNotExist(err) && !overwrite {
				return fmt.Errorf("%s already exists. Provide the -o flag to overwrite the existing config",
					config.ConfigFile)
			}

			ownersFlag, _ := cmdFlags.GetString("owners")
			threshold, _ := cmdFlags.GetInt("threshold")
			message, _ := cmdFlags.GetString("message")
			gatewayAddr, _ := cmdFlags.GetString("gateway-addr")
			debugAddr, _ := cmdFlags.GetString("debug-addr")

			owners, err := signer.OwnersFromFlag(ownersFlag)
			if err != nil {
				return err
			}

			tokens := make(signer.GatewayTokensConfig, len(owners))
			for i, o := range owners {
				tokens[i] = signer.GatewayTokenConfig{Owner: o.Name}
			}

			cfg := signer.Config{
				Owners:        owners,
				Threshold:     threshold,
				Message:       message,
				GatewayAddr:   gatewayAddr,
				GatewayTokens: tokens,
				DebugAddr:     debugAddr,
			}

			if err := cfg.ValidateWalletConfig(); err != nil {
				return err
			}

			// silence usage after all input has been validated
			cmd.SilenceUsage = true

			// create all directories up to the state directory
			if err := os.MkdirAll(config.StateDir, 0755); err != nil {
				return err
			}
			config.Config = cfg
			if err := os.MkdirAll(config.KeyDirPath(), 0700); err != nil {
				return err
			}
			if err := config.WriteConfigFile(); err != nil {
				return err
			}

			scheme := pqc.NewScheme()
			keys, err := signer.CreateOwnerKeys(scheme, cfg.OwnerNames()...)
			if err != nil {
				return err
			}

			registryKeys := make(map[string]pqc.PublicKey, len(keys))
			for _, key := range keys {
				if err := signer.WriteOwnerKeyFile(key, config.KeyFilePath(key.Owner)); err != nil {
					return err
				}
				registryKeys[key.Owner] = key.PublicKey
			}

			registry, err := signer.NewOwnerRegistry(registryKeys, cfg.Threshold)
			if err != nil {
				return err
			}

			wallet := signer.NewWallet(registry, []byte(cfg.Message))
			if err := signer.SaveWallet(config.WalletStateFile(), wallet); err != nil {
				return err
			}

			fmt.Printf("Successfully initialized configuration: %s\n", config.ConfigFile)
			return nil
		},
	}
	cmd.Flags().StringP("owners", "n", "Alice,Bob,Charlie", "comma separated owner names")
	cmd.Flags().IntP("threshold", "t", 2, "number of valid owner signatures required to authorize the transaction")
	cmd.Flags().StringP("message", "m", "Transfer 10 coins", "transaction message under authorization")
	cmd.Flags().StringP("gateway-addr", "g", "tcp://127.0.0.1:7589", "listen address of the hardware signing gateway")
	cmd.Flags().StringP("debug-addr", "d", "", "listen address for Debug and Prometheus metrics in format localhost:8543")
	cmd.Flags().BoolP("overwrite", "o", false, "set to overwrite an existing config.yaml")
	return cmd
}
