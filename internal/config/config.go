// Package config provides configuration management for the substratix
// embedding daemon.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/substratix/substratix/internal/policy"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Substrate SubstrateConfig `mapstructure:"substrate"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address string.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SubstrateConfig points at the substrate network description.
type SubstrateConfig struct {
	Path string `mapstructure:"path"`
}

// EmbeddingConfig holds mapping engine configuration.
type EmbeddingConfig struct {
	// Seed initializes the engine's random source. The same seed against
	// the same substrate and workload reproduces every placement draw.
	Seed int64 `mapstructure:"seed"`
}

// PolicyConfig selects and parameterizes the scoring policy backend.
type PolicyConfig struct {
	// Backend is "softmax" or "uniform".
	Backend string        `mapstructure:"backend"`
	Softmax policy.Config `mapstructure:"softmax"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS configuration for the HTTP API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from the given file (or the default search
// paths), applying defaults and SUBSTRATIX_* environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SUBSTRATIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Substrate
	v.SetDefault("substrate.path", "data/physical_network.json")

	// Embedding
	v.SetDefault("embedding.seed", 1)

	// Policy
	defaults := policy.DefaultConfig()
	v.SetDefault("policy.backend", "softmax")
	v.SetDefault("policy.softmax.cpu_weight", defaults.CPUWeight)
	v.SetDefault("policy.softmax.bandwidth_weight", defaults.BandwidthWeight)
	v.SetDefault("policy.softmax.distance_weight", defaults.DistanceWeight)
	v.SetDefault("policy.softmax.delay_weight", defaults.DelayWeight)
	v.SetDefault("policy.softmax.security_weight", defaults.SecurityWeight)
	v.SetDefault("policy.softmax.temperature", defaults.Temperature)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// CORS
	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Metrics
	v.SetDefault("metrics.enabled", true)
}
