// Package cmd provides the uiforge command-line interface.
//
// Configuration is resolved from, highest priority first:
//
//  1. command-line flags (--config, --port, ...)
//  2. UIFORGE_CONFIG_FILE, naming the config file to read
//  3. individual environment variables (UIFORGE_SERVER_PORT, UIFORGE_GENERATOR_BASE_URL, ...)
//  4. .uiforge.yml in the current directory
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "uiforge",
	Short: "Describe a UI in plain language and preview it live",
	Long: `uiforge turns natural-language descriptions into UI markup built from a
fixed component catalog, keeps every generated version and renders the
active one in a live preview.

Quick Start:
  uiforge serve                       Start the workspace in the browser
  uiforge submit "a login card"       Generate a version from the terminal
  uiforge history                     List versions
  uiforge rollback 1                  Make version 1 active again
  uiforge render page.jsx             Render markup without a backend
  uiforge components                  Show the component catalog`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .uiforge.yml, can also use UIFORGE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("UIFORGE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".uiforge")
	}

	viper.SetEnvPrefix("UIFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing or unreadable file falls back to defaults and environment.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
