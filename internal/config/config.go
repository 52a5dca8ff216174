// Package config handles loading and validating the mandirate configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the mandirate daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	LiveFeed   LiveFeedConfig   `mapstructure:"livefeed"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
	MQTT MQTTConfig `mapstructure:"mqtt"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP/WebSocket transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// MQTTConfig configures the MQTT transport.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	QoS         byte   `mapstructure:"qos"`
}

// LiveFeedConfig configures the data.gov.in mandi price source.
type LiveFeedConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	ResourceID      string        `mapstructure:"resource_id"`
	APIKey          string        `mapstructure:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ListingLimit    int           `mapstructure:"listing_limit"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"` // 0 disables periodic refresh
}

// EngineConfig holds query engine settings.
type EngineConfig struct {
	DefaultLanguage string `mapstructure:"default_language"` // ISO-639-1, "en" or "hi"
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from .env, file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./mandirate.yaml, ./configs/mandirate.yaml, /etc/mandirate/mandirate.yaml.
func Load(configFile string) (*Config, error) {
	// A local .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 3000)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.mqtt.enabled", false)
	v.SetDefault("transports.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("transports.mqtt.topic_prefix", "mandirate")
	v.SetDefault("transports.mqtt.client_id", "mandirate")
	v.SetDefault("transports.mqtt.qos", 1)
	v.SetDefault("livefeed.enabled", true)
	v.SetDefault("livefeed.endpoint", "https://api.data.gov.in/resource")
	v.SetDefault("livefeed.resource_id", "9ef84268-d588-465a-a308-a864a43d0070")
	v.SetDefault("livefeed.api_key", "${DATA_GOV_API_KEY}")
	v.SetDefault("livefeed.timeout", "5s")
	v.SetDefault("livefeed.listing_limit", 10)
	v.SetDefault("livefeed.refresh_interval", "15m")
	v.SetDefault("engine.default_language", "en")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("mandirate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mandirate")
	}

	// Environment variables: MANDIRATE_SERVER_HEALTH_PORT, MANDIRATE_LIVEFEED_API_KEY, etc.
	v.SetEnvPrefix("MANDIRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${DATA_GOV_API_KEY}")
	cfg.LiveFeed.APIKey = resolveEnvRef(cfg.LiveFeed.APIKey)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.LiveFeed.ListingLimit <= 0 {
		return fmt.Errorf("livefeed.listing_limit must be positive, got %d", c.LiveFeed.ListingLimit)
	}
	if c.LiveFeed.Timeout <= 0 {
		return fmt.Errorf("livefeed.timeout must be positive, got %s", c.LiveFeed.Timeout)
	}
	if c.Transports.MQTT.QoS > 2 {
		return fmt.Errorf("transports.mqtt.qos must be 0, 1 or 2, got %d", c.Transports.MQTT.QoS)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
