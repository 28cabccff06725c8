// Package config provides configuration management for uiforge using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable overrides
// with the UIFORGE_ prefix, and validation. It manages the preview server,
// the generation backend, the workspace storage driver, preview behavior and
// logging.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Supported enum values.
var (
	GeneratorProviders = []string{"http", "openai"}
	StorageDrivers     = []string{"memory", "file", "redis", "sqlite"}
	PreviewModes       = []string{"preview", "source"}
	LogFormats         = []string{"text", "json"}
	LogLevels          = []string{"debug", "info", "warn", "error"}
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Preview   PreviewConfig   `mapstructure:"preview" yaml:"preview"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	Open           bool     `mapstructure:"open" yaml:"open"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// RateLimit caps mutating API requests per client per minute. Zero
	// disables limiting.
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit"`
}

type GeneratorConfig struct {
	Provider string        `mapstructure:"provider" yaml:"provider"`
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type StorageConfig struct {
	Driver    string      `mapstructure:"driver" yaml:"driver"`
	Path      string      `mapstructure:"path" yaml:"path"`
	Namespace string      `mapstructure:"namespace" yaml:"namespace"`
	Redis     RedisConfig `mapstructure:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

type PreviewConfig struct {
	DefaultMode string        `mapstructure:"default_mode" yaml:"default_mode"`
	CopyAck     time.Duration `mapstructure:"copy_ack" yaml:"copy_ack"`
	Sanitize    bool          `mapstructure:"sanitize" yaml:"sanitize"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default values.
const (
	DefaultPort             = 8080
	DefaultHost             = "localhost"
	DefaultBaseURL          = "http://localhost:3001"
	DefaultOpenAIModel      = "gpt-4o-mini"
	DefaultGeneratorTimeout = 2 * time.Minute
	DefaultNamespace        = "ui-gen"
	DefaultCopyAck          = 2 * time.Second
	DefaultRateLimit        = 60
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Server:  ServerConfig{RateLimit: DefaultRateLimit},
		Preview: PreviewConfig{Sanitize: true},
	}
	applyDefaults(cfg)

	return cfg
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Slices set through flags or env arrive as comma separated strings.
	if viper.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}

	if !viper.IsSet("server.rate_limit") {
		config.Server.RateLimit = DefaultRateLimit
	}

	if !viper.IsSet("preview.sanitize") {
		config.Preview.Sanitize = true
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{
			fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port),
		}
	}

	if config.Generator.Provider == "" {
		config.Generator.Provider = "http"
	}
	if config.Generator.BaseURL == "" && config.Generator.Provider == "http" {
		config.Generator.BaseURL = DefaultBaseURL
	}
	if config.Generator.Model == "" && config.Generator.Provider == "openai" {
		config.Generator.Model = DefaultOpenAIModel
	}
	if config.Generator.Timeout == 0 {
		config.Generator.Timeout = DefaultGeneratorTimeout
	}

	if config.Storage.Driver == "" {
		config.Storage.Driver = "file"
	}
	if config.Storage.Path == "" {
		switch config.Storage.Driver {
		case "file":
			config.Storage.Path = ".uiforge/workspace.json"
		case "sqlite":
			config.Storage.Path = ".uiforge/workspace.db"
		}
	}
	if config.Storage.Namespace == "" {
		config.Storage.Namespace = DefaultNamespace
	}
	if config.Storage.Redis.Addr == "" && config.Storage.Driver == "redis" {
		config.Storage.Redis.Addr = "localhost:6379"
	}

	if config.Preview.DefaultMode == "" {
		config.Preview.DefaultMode = "preview"
	}
	if config.Preview.CopyAck == 0 {
		config.Preview.CopyAck = DefaultCopyAck
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

// Watch invokes onChange with the reloaded configuration whenever the config
// file viper loaded changes on disk. Reloads that fail validation are passed
// to onError and otherwise ignored.
func Watch(onChange func(*Config), onError func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load()
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateGeneratorConfig(&config.Generator); err != nil {
		return fmt.Errorf("generator config: %w", err)
	}

	if err := validateStorageConfig(&config.Storage); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if !contains(PreviewModes, config.Preview.DefaultMode) {
		return fmt.Errorf("preview config: unknown default_mode %q", config.Preview.DefaultMode)
	}
	if config.Preview.CopyAck < 0 {
		return fmt.Errorf("preview config: copy_ack must be positive")
	}

	if !contains(LogLevels, strings.ToLower(config.Log.Level)) {
		return fmt.Errorf("log config: unknown level %q", config.Log.Level)
	}
	if !contains(LogFormats, config.Log.Format) {
		return fmt.Errorf("log config: unknown format %q", config.Log.Format)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			return fmt.Errorf("host: %w", err)
		}
	}

	if config.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}

	return nil
}

func validateGeneratorConfig(config *GeneratorConfig) error {
	if !contains(GeneratorProviders, config.Provider) {
		return fmt.Errorf("unknown provider %q", config.Provider)
	}
	if config.Provider == "http" && config.BaseURL == "" {
		return fmt.Errorf("base_url is required for the http provider")
	}
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

func validateStorageConfig(config *StorageConfig) error {
	if !contains(StorageDrivers, config.Driver) {
		return fmt.Errorf("unknown driver %q", config.Driver)
	}

	if config.Driver == "file" || config.Driver == "sqlite" {
		if err := validatePath(config.Path); err != nil {
			return fmt.Errorf("invalid path '%s': %w", config.Path, err)
		}
	}

	if strings.ContainsAny(config.Namespace, " \t\n:") {
		return fmt.Errorf("namespace %q contains whitespace or ':'", config.Namespace)
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
