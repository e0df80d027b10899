// Package cli implements the heartwood command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/kernel/sdfx"
)

var rootCmd = &cobra.Command{
	Use:   "heartwood",
	Short: "Feature-history solid modeling from Lisp sources",
	Long: "Heartwood evaluates Lisp part definitions into solids with an " +
		"editable feature history, and renders or exports the results.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .heartwood.yaml)")
	rootCmd.PersistentFlags().Int("resolution", sdfx.DefaultResolution, "tessellation grid resolution")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("resolution", rootCmd.PersistentFlags().Lookup("resolution"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".heartwood")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("HEARTWOOD")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// newKernel builds the solid kernel from the effective configuration.
func newKernel() kernel.Kernel {
	return sdfx.NewWithResolution(viper.GetInt("resolution"))
}
