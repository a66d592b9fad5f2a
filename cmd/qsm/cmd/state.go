package cmd

import (
	"fmt"
	"os"
	"strings"

	cometlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

func init() {
	rootCmd.AddCommand(stateCmd())
}

func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Commands to inspect and manage the wallet signature state",
	}

	cmd.AddCommand(showStateCmd())
	cmd.AddCommand(resetStateCmd())

	return cmd
}

func showStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "show",
		Aliases:      []string{"s"},
		Short:        "Show the wallet's owners, recorded signatures, and authorization status",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(config.HomeDir); os.IsNotExist(err) {
				return fmt.Errorf("%s does not exist, initialize config with qsm init and try again", config.HomeDir)
			}
			if err := config.Config.ValidateWalletConfig(); err != nil {
				return err
			}

			logger := cometlog.NewTMLogger(cometlog.NewSyncWriter(os.Stdout)).With("module", "wallet")
			scheme := pqc.NewScheme()

			wallet, err := signer.LoadWallet(config.WalletStateFile(), []byte(config.Config.Message))
			if err != nil {
				return err
			}
			coordinator := signer.NewThresholdCoordinator(logger, wallet, scheme)

			recorded := strings.Join(wallet.Ledger().OwnerIDs(), ", ")
			if recorded == "" {
				recorded = "(none)"
			}

			fmt.Printf("Transaction message:  %s\n", config.Config.Message)
			fmt.Printf("Owners:               %s\n", strings.Join(wallet.Registry().OwnerIDs(), ", "))
			fmt.Printf("Threshold:            %d\n", wallet.Registry().Threshold())
			fmt.Printf("Recorded signatures:  %s\n", recorded)
			fmt.Printf("Valid signatures:     %d\n", coordinator.ValidCount())
			fmt.Printf("Status:               %s\n", coordinator.Status())
			return nil
		},
	}
}

func resetStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "reset",
		Aliases:      []string{"r"},
		Short:        "Discard all recorded signatures and write fresh wallet state",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Config.ValidateWalletConfig(); err != nil {
				return err
			}

			registry, err := registryFromConfig()
			if err != nil {
				return err
			}

			wallet := signer.NewWallet(registry, []byte(config.Config.Message))
			if err := signer.SaveWallet(config.WalletStateFile(), wallet); err != nil {
				return err
			}

			fmt.Printf("Successfully reset wallet state: %s\n", config.WalletStateFile())
			return nil
		},
	}
}
