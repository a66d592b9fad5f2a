package cmd

import (
	"os"

	cometlog "github.com/cometbft/cometbft/libs/log"
	cometservice "github.com/cometbft/cometbft/libs/service"
	"github.com/spf13/cobra"

	"github.com/0rlych1kk4/quantum-safe-multisig/hsm"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

func init() {
	rootCmd.AddCommand(gatewayCmd())
}

func gatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gateway",
		Aliases: []string{"gw"},
		Short:   "Run the hardware signing gateway daemon",
		Long: "Run the signing gateway: a vault of owner tokens served over RPC.\n\n" +
			"Token PINs come from the config file or the --pin flag; they are never\n" +
			"baked into the binary or scaffolded by init.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := cometlog.NewTMLogger(cometlog.NewSyncWriter(os.Stdout)).With("module", "gateway")

			if err := signer.RequireNotRunning(logger, config.PidFile); err != nil {
				return err
			}

			pinsFlag, _ := cmd.Flags().GetStringSlice("pin")
			pins, err := signer.PINsFromFlag(pinsFlag)
			if err != nil {
				return err
			}

			cfg := config.Config
			for i, token := range cfg.GatewayTokens {
				if pin, ok := pins[token.Owner]; ok {
					cfg.GatewayTokens[i].PIN = pin
				}
			}

			if err := cfg.ValidateGatewayConfig(); err != nil {
				return err
			}

			cmd.SilenceUsage = true

			scheme := pqc.NewScheme()
			tokens := make([]hsm.Token, len(cfg.GatewayTokens))
			for i, tc := range cfg.GatewayTokens {
				key, err := signer.LoadOwnerKey(config.GatewayKeyFilePath(tc))
				if err != nil {
					return err
				}
				tokens[i] = hsm.Token{
					Owner:      tc.Owner,
					PIN:        tc.PIN,
					PrivateKey: key.PrivateKey,
				}
			}

			vault := hsm.NewVault(logger, scheme, tokens)
			rpcServer := hsm.NewGatewayServer(&hsm.GatewayServerConfig{
				Logger:        logger,
				ListenAddress: cfg.GatewayAddr,
				Sessions:      vault,
			})

			if err := rpcServer.Start(); err != nil {
				return err
			}
			logger.Info("Gateway listening", "address", cfg.GatewayAddr, "tokens", len(tokens))

			go hsm.StartMetricsTimer()
			if cfg.DebugAddr != "" {
				go StartMetrics()
			}

			signer.WaitAndTerminate(logger, []cometservice.Service{rpcServer}, config.PidFile)

			return nil
		},
	}
	cmd.Flags().StringSliceP("pin", "p", nil,
		"gateway token PIN in format {owner}={pin}, repeatable, overrides config.yaml")
	return cmd
}
