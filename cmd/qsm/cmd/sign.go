package cmd

import (
	"errors"
	"fmt"
	"os"

	cometlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/0rlych1kk4/quantum-safe-multisig/hsm"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

func init() {
	rootCmd.AddCommand(signCmd())
}

func signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Contribute an owner's signature over the configured transaction message",
		Long: "Contribute an owner's signature to the wallet's signature ledger.\n\n" +
			"By default the owner's local key file signs in process. With --hsm the\n" +
			"signature is produced by the signing gateway through an authenticated\n" +
			"session; --pin provides the gateway token PIN.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdFlags := cmd.Flags()
			owner, _ := cmdFlags.GetString("owner")
			useHSM, _ := cmdFlags.GetBool("hsm")
			pin, _ := cmdFlags.GetString("pin")
			all, _ := cmdFlags.GetBool("all")

			if all && useHSM {
				return errors.New("--all signs with local key files and cannot be combined with --hsm")
			}
			if !all && owner == "" {
				return errors.New("must provide --owner (or --all)")
			}
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
			ctx := cmd.Context()

			if all {
				var eg errgroup.Group
				for _, name := range wallet.Registry().OwnerIDs() {
					name := name
					eg.Go(func() error {
						key, err := signer.LoadOwnerKey(config.KeyFilePath(name))
						if err != nil {
							return err
						}
						return coordinator.Contribute(ctx, name, signer.NewLocalSigner(scheme, key.PrivateKey), "")
					})
				}
				if err := eg.Wait(); err != nil {
					return err
				}
			} else {
				var backend signer.SignatureBackend
				if useHSM {
					gatewayClient := hsm.NewGatewayClient(config.Config.GatewayAddr)
					if err := gatewayClient.WaitForGateway(ctx); err != nil {
						return fmt.Errorf("gateway is not reachable at %s: %w", config.Config.GatewayAddr, err)
					}
					backend = signer.NewHardwareSigner(logger, gatewayClient)
				} else {
					keyFile, err := config.KeyFileExists(owner)
					if err != nil {
						return err
					}
					key, err := signer.LoadOwnerKey(keyFile)
					if err != nil {
						return err
					}
					backend = signer.NewLocalSigner(scheme, key.PrivateKey)
				}

				if err := coordinator.Contribute(ctx, owner, backend, pin); err != nil {
					return err
				}
			}

			if err := signer.SaveWallet(config.WalletStateFile(), wallet); err != nil {
				return err
			}

			fmt.Printf("Wallet now holds %d of %d required valid signatures (status: %s)\n",
				coordinator.ValidCount(), wallet.Registry().Threshold(), coordinator.Status())
			return nil
		},
	}
	cmd.Flags().StringP("owner", "n", "", "owner name contributing the signature")
	cmd.Flags().Bool("hsm", false, "sign through the hardware signing gateway instead of a local key file")
	cmd.Flags().StringP("pin", "p", "", "gateway token PIN, only used with --hsm")
	cmd.Flags().Bool("all", false, "contribute for every registered owner using local key files")
	return cmd
}
