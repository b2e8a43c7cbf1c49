// Package config loads settings from defaults, an optional config file, a
// .env file and PLAYLIST_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "PLAYLIST"

type Config struct {
	Database struct {
		Driver       string `mapstructure:"driver"`
		Path         string `mapstructure:"path"`
		DSN          string `mapstructure:"dsn"`
		Host         string `mapstructure:"host"`
		Port         int    `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		Name         string `mapstructure:"name"`
		SSLMode      string `mapstructure:"sslmode"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	} `mapstructure:"database"`
	Ingest struct {
		BatchSize   int           `mapstructure:"batch_size"`
		MaxAttempts int           `mapstructure:"max_attempts"`
		BaseDelay   time.Duration `mapstructure:"base_delay"`
		Timezone    string        `mapstructure:"timezone"`
	} `mapstructure:"ingest"`
	API struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"api"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Spotify struct {
		BaseURL      string `mapstructure:"base_url"`
		TokenURL     string `mapstructure:"token_url"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"spotify"`
	Metrics struct {
		PushgatewayURL string `mapstructure:"pushgateway_url"`
		Job            string `mapstructure:"job"`
	} `mapstructure:"metrics"`

	location *time.Location
}

var keys = []string{
	"database.driver", "database.path", "database.dsn", "database.host",
	"database.port", "database.user", "database.password", "database.name",
	"database.sslmode", "database.max_open_conns",
	"ingest.batch_size", "ingest.max_attempts", "ingest.base_delay", "ingest.timezone",
	"api.host", "api.port",
	"log.level", "log.format",
	"spotify.base_url", "spotify.token_url", "spotify.client_id", "spotify.client_secret",
	"metrics.pushgateway_url", "metrics.job",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "playlists.db")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("ingest.batch_size", 100)
	v.SetDefault("ingest.max_attempts", 3)
	v.SetDefault("ingest.base_delay", time.Second)
	v.SetDefault("ingest.timezone", "UTC")

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 3000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("spotify.base_url", "https://api.spotify.com/v1")
	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")

	v.SetDefault("metrics.job", "playlist_ingest")
}

// Load reads the configuration into v, which may already carry bound CLI
// flags. configFile is optional; without it ./config.yaml is used when
// present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load .env: %w", err)
	}

	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", k, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "sqlite3", "mysql", "postgres", "postgresql":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("config: ingest.batch_size must be at least 1, got %d", c.Ingest.BatchSize)
	}
	if c.Ingest.MaxAttempts < 1 {
		return fmt.Errorf("config: ingest.max_attempts must be at least 1, got %d", c.Ingest.MaxAttempts)
	}
	if c.Ingest.BaseDelay <= 0 {
		return fmt.Errorf("config: ingest.base_delay must be positive, got %s", c.Ingest.BaseDelay)
	}
	loc, err := time.LoadLocation(c.Ingest.Timezone)
	if err != nil {
		return fmt.Errorf("config: invalid ingest.timezone: %w", err)
	}
	c.location = loc
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port out of range: %d", c.API.Port)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: unsupported log.format %q", c.Log.Format)
	}
	return nil
}

// Location is the zone used for timestamps that carry none.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Addr is the API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
