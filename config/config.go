package config

import (
	"log"
	"os"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// HTTP
	ListenAddr  string
	MetricsAddr string

	// Infrastructure
	RedisAddr     string
	RedisPassword string

	// SQLite databases: instrument catalog and order audit log.
	CatalogPath  string
	OrderLogPath string

	// Broker
	BrokerRootURL string

	// Voice channel
	VoiceSettingsPath string
	TranscribeURL     string // empty selects the Groq endpoint

	// Optional service session bootstrap for the LTP feed. When the
	// client code is empty the price gate runs without a service session
	// and LIMIT orders fail closed if no feed is wired.
	AngelAPIKey     string
	AngelClientCode string
	AngelPassword   string
	AngelTOTPSecret string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ListenAddr:  getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		CatalogPath:  getEnv("CATALOG_PATH", "data/instruments.db"),
		OrderLogPath: getEnv("ORDER_LOG_PATH", "data/orders.db"),

		BrokerRootURL: getEnv("BROKER_ROOT_URL", ""),

		VoiceSettingsPath: getEnv("VOICE_SETTINGS_PATH", ""),
		TranscribeURL:     getEnv("TRANSCRIBE_URL", ""),

		AngelAPIKey:     getEnv("ANGEL_API_KEY", ""),
		AngelClientCode: getEnv("ANGEL_CLIENT_CODE", ""),
		AngelPassword:   getEnv("ANGEL_PASSWORD", ""),
		AngelTOTPSecret: getEnv("ANGEL_TOTP_SECRET", ""),
	}
}

// RequireBootstrap validates that all four broker bootstrap variables are
// present. Called only when a service session is requested.
func (c *Config) RequireBootstrap() {
	for k, v := range map[string]string{
		"ANGEL_API_KEY":     c.AngelAPIKey,
		"ANGEL_CLIENT_CODE": c.AngelClientCode,
		"ANGEL_PASSWORD":    c.AngelPassword,
		"ANGEL_TOTP_SECRET": c.AngelTOTPSecret,
	} {
		if v == "" {
			log.Fatalf("[config] required env var %s not set", k)
		}
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
