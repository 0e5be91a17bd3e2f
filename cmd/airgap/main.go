package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/airgaplab/airgap/internal/errx"
	"github.com/airgaplab/airgap/pkg/api"
)

var rootCmd = &cobra.Command{
	Use:          "airgap",
	Short:        "Deterministic network blocking for test suites",
	SilenceUsage: true,
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $AIRGAP_CONFIG, then ~/.airgap.yaml)")
}

func initConfig() {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case os.Getenv("AIRGAP_CONFIG") != "":
		viper.SetConfigFile(os.Getenv("AIRGAP_CONFIG"))
	default:
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".airgap")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("AIRGAP")
	viper.AutomaticEnv()

	// A missing config file is fine; flags and env carry the rest.
	_ = viper.ReadInConfig()
}

// loadDefaults materializes the process-wide configuration from viper.
func loadDefaults() (api.Defaults, error) {
	var defaults api.Defaults
	if err := viper.Unmarshal(&defaults); err != nil {
		return defaults, errx.Wrap(ErrLoadConfig, err)
	}
	if err := defaults.Validate(); err != nil {
		return defaults, err
	}
	return defaults, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
