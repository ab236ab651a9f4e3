package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Auth           AuthConfig
	Embedding      EmbeddingConfig
	RateLimit      RateLimitConfig
	AdminBootstrap AdminBootstrapConfig
	Jobs           JobsConfig
	Logging        LoggingConfig
	Tracing        TracingConfig
	Environment    string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdle        int
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	Issuer    string
}

type EmbeddingConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type RateLimitConfig struct {
	PublicPerMinute int
	UserPerMinute   int
}

type AdminBootstrapConfig struct {
	Email       string
	Password    string
	DisplayName string
}

type JobsConfig struct {
	RetryRecompute int
	RetryEmbed     int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Enabled      bool
	Exporter     string
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

// fileOverlay mirrors the optional YAML config file. Only fields present
// in the file override the environment.
type fileOverlay struct {
	Server struct {
		Host    *string `yaml:"host"`
		Port    *int    `yaml:"port"`
		BaseURL *string `yaml:"base_url"`
	} `yaml:"server"`
	Logging struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"logging"`
	Embedding struct {
		BaseURL *string `yaml:"base_url"`
		Model   *string `yaml:"model"`
	} `yaml:"embedding"`
}

// Load builds configuration from environment variables, then applies the
// optional YAML file at configPath on top.
func Load(configPath string) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
			Issuer:    getEnv("JWT_ISSUER", "episteme"),
		},
		Embedding: EmbeddingConfig{
			BaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:9090"),
			APIKey:  getEnv("EMBEDDING_API_KEY", ""),
			Model:   getEnv("EMBEDDING_MODEL", "all-minilm-l6-v2"),
			Timeout: time.Duration(getEnvInt("EMBEDDING_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: getEnvInt("RATE_LIMIT_PUBLIC", 60),
			UserPerMinute:   getEnvInt("RATE_LIMIT_USER", 300),
		},
		AdminBootstrap: AdminBootstrapConfig{
			Email:       getEnv("ADMIN_EMAIL", ""),
			Password:    getEnv("ADMIN_PASSWORD", ""),
			DisplayName: getEnv("ADMIN_DISPLAY_NAME", "Administrator"),
		},
		Jobs: JobsConfig{
			RetryRecompute: getEnvInt("JOB_RETRY_RECOMPUTE", 5),
			RetryEmbed:     getEnvInt("JOB_RETRY_EMBED", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			Exporter:     getEnv("TRACING_EXPORTER", "none"),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "episteme-server"),
			OTLPEndpoint: getEnv("TRACING_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if configPath != "" {
		if err := applyOverlay(&cfg, configPath); err != nil {
			return Config{}, err
		}
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func applyOverlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if overlay.Server.Host != nil {
		cfg.Server.Host = *overlay.Server.Host
	}
	if overlay.Server.Port != nil {
		cfg.Server.Port = *overlay.Server.Port
	}
	if overlay.Server.BaseURL != nil {
		cfg.Server.BaseURL = *overlay.Server.BaseURL
	}
	if overlay.Logging.Level != nil {
		cfg.Logging.Level = *overlay.Logging.Level
	}
	if overlay.Logging.Format != nil {
		cfg.Logging.Format = *overlay.Logging.Format
	}
	if overlay.Embedding.BaseURL != nil {
		cfg.Embedding.BaseURL = *overlay.Embedding.BaseURL
	}
	if overlay.Embedding.Model != nil {
		cfg.Embedding.Model = *overlay.Embedding.Model
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
