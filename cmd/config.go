package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/uiforge/internal/config"
	"github.com/conneroisu/uiforge/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect uiforge configuration",
	Long: `Inspect uiforge configuration files and settings.

Examples:
  uiforge config show                       # Show resolved configuration
  uiforge config show --format json
  uiforge config validate                   # Validate .uiforge.yml
  uiforge config validate --file other.yml --strict`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a uiforge configuration file. Errors fail the command; warnings
only fail it with --strict.`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Display the configuration after applying the config file, environment
variables, flags and defaults. Secrets are masked.`,
	RunE: runConfigShow,
}

var (
	configFile   string
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "configuration file to validate (default: .uiforge.yml)")
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "treat warnings as errors")

	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "output format (yaml, json)")
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	targetFile := configFile
	if targetFile == "" {
		targetFile = ".uiforge.yml"
	}
	if _, err := os.Stat(targetFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("configuration file %s does not exist", targetFile)
		}
		return err
	}

	cfg, err := loadConfigFile(targetFile)
	if err != nil {
		return err
	}

	return reportValidation(cmd.OutOrStdout(), targetFile, config.ValidateConfigWithDetails(cfg), configStrict)
}

// loadConfigFile reads path over the defaults without touching the global
// viper instance.
func loadConfigFile(path string) (*config.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	cfg := config.Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return cfg, nil
}

func reportValidation(w io.Writer, file string, result *config.ValidationResult, strict bool) error {
	fmt.Fprintf(w, "🔍 Validating configuration file: %s\n", file)

	if result.Valid && !result.HasWarnings() {
		fmt.Fprintln(w, "✅ Configuration is valid!")
		return nil
	}

	fmt.Fprint(w, result.String())
	if result.HasErrors() {
		return fmt.Errorf("configuration validation failed with %d errors: %w", len(result.Errors.Errors), result.Err())
	}
	if strict {
		return fmt.Errorf("configuration validation failed in strict mode with %d warnings", len(result.Warnings.Errors))
	}
	fmt.Fprintln(w, "✅ Configuration is valid (with warnings)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	return showConfig(cmd.OutOrStdout(), cfg, configFormat)
}

func showConfig(w io.Writer, cfg *config.Config, format string) error {
	masked := *cfg
	if masked.Generator.APIKey != "" {
		masked.Generator.APIKey = logging.MaskSecret(masked.Generator.APIKey)
	}
	if masked.Storage.Redis.Password != "" {
		masked.Storage.Redis.Password = logging.MaskSecret(masked.Storage.Redis.Password)
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(masked); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(masked)
	default:
		return errors.New("unsupported format: " + format + " (supported: yaml, json)")
	}
}
