package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// Config holds all application configuration.
type Config struct {
	Postgres  PostgresConfig  `koanf:"postgres"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Server    ServerConfig    `koanf:"server"`
	Model     ModelConfig     `koanf:"model"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// PostgresConfig describes the optional raw-listings source and feature sink.
type PostgresConfig struct {
	Host          string `koanf:"host"`
	Port          string `koanf:"port"`
	User          string `koanf:"user"`
	Password      string `koanf:"password"`
	DB            string `koanf:"db"`
	SSLMode       string `koanf:"sslmode"`
	RawTable      string `koanf:"raw_table"`
	FeaturesTable string `koanf:"features_table"`
	MaxRetries    int    `koanf:"max_retries"`
}

// PipelineConfig controls batch preparation runs.
type PipelineConfig struct {
	MaxConcurrency int    `koanf:"max_concurrency"`
	OutputPath     string `koanf:"output_path"`
}

// ServerConfig controls the prediction HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// ModelConfig points at the trained model artifact.
type ModelConfig struct {
	Path string `koanf:"path"`
}

// ArtifactsConfig locates the badger store holding models and frequency snapshots.
type ArtifactsConfig struct {
	Dir string `koanf:"dir"`
}

// LoggingConfig mirrors utils.LogConfig.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          "5432",
			User:          "pricer",
			Password:      "pricer123",
			DB:            "rental_db",
			SSLMode:       "disable",
			RawTable:      "raw_listings",
			FeaturesTable: "listing_features",
			MaxRetries:    5,
		},
		Pipeline: PipelineConfig{
			MaxConcurrency: 3,
			OutputPath:     "./output/listing_features.csv",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Model: ModelConfig{
			Path: "",
		},
		Artifacts: ArtifactsConfig{
			Dir: "./output/artifacts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the .env file (if any), then layers defaults, an optional YAML file and
// environment variables, and returns the validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	if origins, ok := k.Get("server.cors_origins").(string); ok && origins != "" {
		if err := k.Set("server.cors_origins", splitList(origins)); err != nil {
			return nil, fmt.Errorf("config: cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Pipeline.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("pipeline max concurrency must be at least 1, got %d", c.Pipeline.MaxConcurrency))
	}
	if c.Server.RateLimitReqs < 0 {
		errs = append(errs, fmt.Errorf("rate limit requests must not be negative"))
	}
	if c.Postgres.RawTable == "" || c.Postgres.FeaturesTable == "" {
		errs = append(errs, fmt.Errorf("postgres raw and features table names are required"))
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	p := c.Postgres
	return "host=" + p.Host +
		" port=" + p.Port +
		" user=" + p.User +
		" password=" + p.Password +
		" dbname=" + p.DB +
		" sslmode=" + p.SSLMode
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variable names (lower-cased) to config keys.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"postgres_host":           "postgres.host",
	"postgres_port":           "postgres.port",
	"postgres_user":           "postgres.user",
	"postgres_password":       "postgres.password",
	"postgres_db":             "postgres.db",
	"postgres_sslmode":        "postgres.sslmode",
	"postgres_raw_table":      "postgres.raw_table",
	"postgres_features_table": "postgres.features_table",
	"postgres_max_retries":    "postgres.max_retries",
	"max_concurrency":         "pipeline.max_concurrency",
	"features_output_path":    "pipeline.output_path",
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"shutdown_timeout":        "server.shutdown_timeout",
	"rate_limit_reqs":         "server.rate_limit_reqs",
	"rate_limit_window":       "server.rate_limit_window",
	"cors_origins":            "server.cors_origins",
	"model_path":              "model.path",
	"artifact_dir":            "artifacts.dir",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
}

func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
