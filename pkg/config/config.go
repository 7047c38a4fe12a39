package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string
	Env  string // development, staging, production

	// Logging. LogsEnabled mirrors the LOGS=on switch: the CLI stays quiet
	// unless it is set, the server always logs.
	LogLevel    string
	LogFormat   string // "json" or "text"
	LogsEnabled bool

	// RolesFile points at a .toml/.yaml role configuration; empty = embedded defaults
	RolesFile                   string
	ConfigReloadIntervalSeconds int

	// Sessions live only in memory and are dropped after this much idle time
	SessionTTL time.Duration

	// Web interface settings
	BasePath        string
	HealthCheckPath string

	MetricsEnabled bool
	MetricsPath    string
}

func Load() *Config {
	env := strings.ToLower(getEnv("ENV", "development"))

	logsEnabled := strings.EqualFold(getEnv("LOGS", "off"), "on")
	reloadIntSec, _ := strconv.Atoi(getEnv("CONFIG_RELOAD_INTERVAL_SECONDS", "2"))
	ttlMin, _ := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "60"))

	metricsDefault := env == "development" || env == "staging"
	metricsEnabled, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", strconv.FormatBool(metricsDefault)))

	if ttlMin <= 0 {
		log.Printf("[Warning] SESSION_TTL_MINUTES is %d, using 60", ttlMin)
		ttlMin = 60
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  env,

		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogsEnabled: logsEnabled,

		RolesFile:                   strings.TrimSpace(getEnv("ROLES_FILE", "")),
		ConfigReloadIntervalSeconds: reloadIntSec,

		SessionTTL: time.Duration(ttlMin) * time.Minute,

		BasePath:        normalizeBasePath(getEnv("BASE_PATH", "/")),
		HealthCheckPath: getEnv("HEALTH_CHECK_PATH", "/health"),

		MetricsEnabled: metricsEnabled,
		MetricsPath:    getEnv("METRICS_PATH", "/metrics"),
	}

	return cfg
}

// ReloadInterval is the roles file polling interval. Zero turns polling off;
// the watcher still reacts to file events.
func (c *Config) ReloadInterval() time.Duration {
	if c.ConfigReloadIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ConfigReloadIntervalSeconds) * time.Second
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
