package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/fkhayef/splitledger/internal/database"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "splitledger.toml"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port string `toml:"port"`
}

// DatabaseConfig selects the store
type DatabaseConfig struct {
	Driver string `toml:"driver"` // postgres or sqlite
	URL    string `toml:"url"`    // DSN for postgres, file path for sqlite
}

// AuthConfig configures actor resolution
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	DevHeader bool   `toml:"dev_header"` // accept X-User-ID without a token
}

// LogConfig configures logrus
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json or text
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Driver: database.SQLite, URL: "./data/splitledger.db"},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration: defaults, then the TOML file at path (a
// missing file is fine), then environment variables. A .env file in the
// working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	// A missing .env is not an error
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Database.Driver = getEnv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.DevHeader = getEnvBool("AUTH_DEV_HEADER", cfg.Auth.DevHeader)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.Postgres, database.SQLite:
	default:
		return fmt.Errorf("unknown database driver %q (want postgres or sqlite)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database url is required")
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Auth.JWTSecret == "" && !c.Auth.DevHeader {
		return errors.New("jwt secret is required unless the dev header is enabled")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
