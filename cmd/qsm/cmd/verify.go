package cmd

import (
	"fmt"
	"os"

	cometlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

func init() {
	rootCmd.AddCommand(verifyCmd())
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify",
		Aliases: []string{"v"},
		Short:   "Check whether the wallet holds enough valid signatures to authorize the transaction",
		Long: "Re-verify every recorded signature against the registered owner keys and\n" +
			"report the authorization decision. Exits non-zero when the transaction is\n" +
			"not authorized.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Config.ValidateWalletConfig(); err != nil {
				return err
			}

			cmd.SilenceUsage = true

			logger := cometlog.NewTMLogger(cometlog.NewSyncWriter(os.Stdout)).With("module", "wallet")
			scheme := pqc.NewScheme()

			wallet, err := loadWalletFromConfig()
			if err != nil {
				return err
			}
			coordinator := signer.NewThresholdCoordinator(logger, wallet, scheme)

			valid := coordinator.ValidCount()
			threshold := wallet.Registry().Threshold()

			if !coordinator.IsAuthorized() {
				fmt.Printf("Transaction Rejected! (%d of %d required valid signatures)\n", valid, threshold)
				os.Exit(1)
			}

			fmt.Printf("Transaction Approved! (%d of %d required valid signatures)\n", valid, threshold)
			return nil
		},
	}
	return cmd
}
