package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer"
	"github.com/0rlych1kk4/quantum-safe-multisig/version"
)

var (
	homeDir string
	config  signer.RuntimeConfig
)

var rootCmd = &cobra.Command{
	Use:   "qsm",
	Short: "A quantum-safe multi-signature wallet with hardware-backed signing",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	handleInitError(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Directory for config and state (default is $HOME/.qsm)")
	rootCmd.AddCommand(version.NewVersionCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var home string
	if homeDir == "" {
		userHome, err := homedir.Dir()
		handleInitError(err)
		home = filepath.Join(userHome, ".qsm")
	} else {
		home = homeDir
	}
	config = signer.RuntimeConfig{
		HomeDir:    home,
		ConfigFile: filepath.Join(home, "config.yaml"),
		StateDir:   filepath.Join(home, "state"),
		PidFile:    filepath.Join(home, "qsm.pid"),
	}
	viper.SetConfigFile(config.ConfigFile)
	viper.SetEnvPrefix("qsm")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		// no config exists yet, commands that need one validate for themselves
		return
	}
	bz, err := os.ReadFile(viper.ConfigFileUsed())
	handleInitError(err)
	handleInitError(yaml.Unmarshal(bz, &config.Config))
}

func handleInitError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
