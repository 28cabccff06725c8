package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/conneroisu/uiforge/internal/errors"
)

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   errors.ValidationErrorCollection
	Warnings errors.ValidationErrorCollection
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return vr.Errors.HasErrors()
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return vr.Warnings.HasErrors()
}

// Err returns the errors as a single validation UIError, or nil.
func (vr *ValidationResult) Err() error {
	if ue := vr.Errors.ToUIError(); ue != nil {
		return ue
	}

	return nil
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if vr.HasErrors() {
		builder.WriteString("❌ Validation Errors:\n")
		writeIssues(&builder, vr.Errors.Errors)
		builder.WriteString("\n")
	}

	if vr.HasWarnings() {
		builder.WriteString("⚠️  Validation Warnings:\n")
		writeIssues(&builder, vr.Warnings.Errors)
	}

	return builder.String()
}

func writeIssues(b *strings.Builder, issues []*errors.FieldValidationError) {
	for _, issue := range issues {
		fmt.Fprintf(b, "  • %s: %s\n", issue.FieldName, issue.ErrorMessage)
		for _, suggestion := range issue.HelpText {
			fmt.Fprintf(b, "    💡 %s\n", suggestion)
		}
	}
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors.AddField(field, value, msg, suggestions...)
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings.AddField(field, value, msg, suggestions...)
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{Valid: true}

	validateServerConfigDetails(&config.Server, result)
	validateGeneratorConfigDetails(&config.Generator, result)
	validateStorageConfigDetails(&config.Storage, result)
	validatePreviewConfigDetails(&config.Preview, result)
	validateLogConfigDetails(&config.Log, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Common development ports: 3000, 8080, 8000, 3001",
		)
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port,
			"port below 1024 requires elevated privileges",
			"Consider using a port above 1024 for development",
		)
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.addError("server.host", config.Host, err.Error(),
				"Use 'localhost' for local development",
				"Use '0.0.0.0' to bind to all interfaces",
			)
		}
	}

	if config.RateLimit < 0 {
		result.addError("server.rate_limit", config.RateLimit,
			"rate_limit must not be negative",
			"Use 0 to disable rate limiting",
		)
	} else if config.RateLimit == 0 {
		result.addWarning("server.rate_limit", config.RateLimit,
			"rate limiting of the generation API is disabled",
		)
	}

	for _, origin := range config.AllowedOrigins {
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			result.addError("server.allowed_origins", origin,
				fmt.Sprintf("origin %q is not an absolute http(s) URL", origin),
				"Origins look like http://localhost:8080",
			)
		}
	}
}

func validateGeneratorConfigDetails(config *GeneratorConfig, result *ValidationResult) {
	if !contains(GeneratorProviders, config.Provider) {
		result.addError("generator.provider", config.Provider,
			fmt.Sprintf("unknown provider '%s'", config.Provider),
			"Available providers: "+strings.Join(GeneratorProviders, ", "),
		)
		return
	}

	switch config.Provider {
	case "http":
		u, err := url.Parse(config.BaseURL)
		if config.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
			result.addError("generator.base_url", config.BaseURL,
				"base_url must be an absolute URL for the http provider",
				"Point it at the generation backend, e.g. http://localhost:8000",
			)
		}
	case "openai":
		if config.APIKey == "" {
			result.addWarning("generator.api_key", "",
				"no API key configured for the openai provider",
				"Set UIFORGE_GENERATOR_API_KEY",
			)
		}
	}

	if config.Timeout < 0 {
		result.addError("generator.timeout", config.Timeout.String(),
			"timeout must be positive",
			"Use a duration such as 90s or 2m",
		)
	} else if config.Timeout > 0 && config.Timeout.Seconds() < 5 {
		result.addWarning("generator.timeout", config.Timeout.String(),
			"timeout is shorter than a typical generation",
		)
	}
}

func validateStorageConfigDetails(config *StorageConfig, result *ValidationResult) {
	if !contains(StorageDrivers, config.Driver) {
		result.addError("storage.driver", config.Driver,
			fmt.Sprintf("unknown driver '%s'", config.Driver),
			"Available drivers: "+strings.Join(StorageDrivers, ", "),
		)
		return
	}

	switch config.Driver {
	case "file", "sqlite":
		if err := validatePath(config.Path); err != nil {
			result.addError("storage.path", config.Path, err.Error(),
				"Use a relative path such as .uiforge/workspace.json",
			)
		}
	case "redis":
		if _, _, err := net.SplitHostPort(config.Redis.Addr); err != nil {
			result.addError("storage.redis.addr", config.Redis.Addr,
				"redis address must be host:port",
				"Use localhost:6379 for a local server",
			)
		}
		if config.Redis.DB < 0 {
			result.addError("storage.redis.db", config.Redis.DB, "db must not be negative")
		}
	case "memory":
		result.addWarning("storage.driver", config.Driver,
			"workspace state is lost when the process exits",
			"Use the file or sqlite driver to keep history across restarts",
		)
	}

	if strings.ContainsAny(config.Namespace, " \t\n:") {
		result.addError("storage.namespace", config.Namespace,
			"namespace must not contain whitespace or ':'",
		)
	}
}

func validatePreviewConfigDetails(config *PreviewConfig, result *ValidationResult) {
	if !contains(PreviewModes, config.DefaultMode) {
		result.addError("preview.default_mode", config.DefaultMode,
			fmt.Sprintf("unknown view mode '%s'", config.DefaultMode),
			"Available modes: "+strings.Join(PreviewModes, ", "),
		)
	}
	if config.CopyAck < 0 {
		result.addError("preview.copy_ack", config.CopyAck.String(), "copy_ack must be positive")
	}
	if !config.Sanitize {
		result.addWarning("preview.sanitize", false,
			"generated markup is served without sanitization",
		)
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if !contains(LogLevels, strings.ToLower(config.Level)) {
		result.addError("log.level", config.Level,
			fmt.Sprintf("unknown log level '%s'", config.Level),
			"Available levels: "+strings.Join(LogLevels, ", "),
		)
	}
	if !contains(LogFormats, config.Format) {
		result.addError("log.format", config.Format,
			fmt.Sprintf("unknown log format '%s'", config.Format),
			"Available formats: "+strings.Join(LogFormats, ", "),
		)
	}
}

// Helper validation functions

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}

	return false
}
