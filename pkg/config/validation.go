package config

import (
	"fmt"
	"strconv"
	"strings"

	errs "alias-heaven-calculator/pkg/errors"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// ConfigValidator collects validation errors
type ConfigValidator struct {
	errors []ValidationError
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		errors: make([]ValidationError, 0),
	}
}

func (cv *ConfigValidator) AddError(field, value, message string) {
	cv.errors = append(cv.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

func (cv *ConfigValidator) GetErrors() []ValidationError {
	return cv.errors
}

// Strings returns one line per validation error
func (cv *ConfigValidator) Strings() []string {
	out := make([]string, 0, len(cv.errors))
	for _, err := range cv.errors {
		out = append(out, err.Error())
	}
	return out
}

// Validate validates the process configuration. Role thresholds are checked
// separately when the roles file is loaded.
func (c *Config) Validate() error {
	validator := NewConfigValidator()

	c.validateFormats(validator)
	c.validateRanges(validator)

	if validator.HasErrors() {
		return errs.NewValidationFields("config.Validate", "configuration validation failed", validator.Strings())
	}
	return nil
}

func (c *Config) validateFormats(validator *ConfigValidator) {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		validator.AddError("PORT", c.Port, "invalid port number (must be 1-65535)")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		validator.AddError("LOG_LEVEL", c.LogLevel, "invalid log level (must be one of: debug, info, warn, error)")
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		validator.AddError("LOG_FORMAT", c.LogFormat, "invalid log format (must be 'json' or 'text')")
	}

	if c.RolesFile != "" {
		if _, err := formatFor(c.RolesFile); err != nil {
			validator.AddError("ROLES_FILE", c.RolesFile, "roles file must end in .toml, .yaml or .yml")
		}
	}

	if !strings.HasPrefix(c.MetricsPath, "/") {
		validator.AddError("METRICS_PATH", c.MetricsPath, "metrics path must start with '/'")
	}
	if !strings.HasPrefix(c.HealthCheckPath, "/") {
		validator.AddError("HEALTH_CHECK_PATH", c.HealthCheckPath, "health check path must start with '/'")
	}
}

func (c *Config) validateRanges(validator *ConfigValidator) {
	if c.ConfigReloadIntervalSeconds < 0 || c.ConfigReloadIntervalSeconds > 3600 {
		validator.AddError("CONFIG_RELOAD_INTERVAL_SECONDS", strconv.Itoa(c.ConfigReloadIntervalSeconds), "reload interval must be between 0 (file events only, no polling) and 3600 seconds")
	}
	if c.SessionTTL <= 0 {
		validator.AddError("SESSION_TTL_MINUTES", c.SessionTTL.String(), "session ttl must be positive")
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetConfigSummary returns a loggable summary of the configuration
func (c *Config) GetConfigSummary() map[string]interface{} {
	rolesFile := c.RolesFile
	if rolesFile == "" {
		rolesFile = "(embedded defaults)"
	}
	return map[string]interface{}{
		"port":            c.Port,
		"env":             c.Env,
		"log_level":       c.LogLevel,
		"log_format":      c.LogFormat,
		"roles_file":      rolesFile,
		"reload_interval": c.ReloadInterval().String(),
		"session_ttl":     c.SessionTTL.String(),
		"base_path":       c.BasePath,
		"metrics_enabled": c.MetricsEnabled,
		"metrics_path":    c.MetricsPath,
	}
}
