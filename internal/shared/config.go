package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	StoreDriverRedis  = "redis"
	StoreDriverSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Spotify SpotifyConfig `toml:"spotify"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      float64  `toml:"rate_limit"`
	RateBurst      int      `toml:"rate_burst"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RedirectURI    string `toml:"redirect_uri"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout is the per-call deadline for outbound provider requests.
func (s SpotifyConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// StoreConfig selects and configures the credential store backend.
type StoreConfig struct {
	Driver string       `toml:"driver"`
	Redis  RedisConfig  `toml:"redis"`
	SQLite SQLiteConfig `toml:"sqlite"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Addr returns the host:port address of the Redis server.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// SQLiteConfig contains database connection settings.
type SQLiteConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides values with the deployment environment variables.
//
// lookup is usually [os.LookupEnv]. ORIGIN_URI replaces the last allowed origin, the slot the
// public site occupies in the defaults.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("CLIENT_ID"); ok {
		c.Spotify.ClientID = v
	}
	if v, ok := lookup("CLIENT_SECRET"); ok {
		c.Spotify.ClientSecret = v
	}
	if v, ok := lookup("REDIRECT_URI"); ok {
		c.Spotify.RedirectURI = v
	}
	if v, ok := lookup("ORIGIN_URI"); ok {
		if n := len(c.Server.AllowedOrigins); n > 0 {
			c.Server.AllowedOrigins[n-1] = v
		} else {
			c.Server.AllowedOrigins = []string{v}
		}
	}
	if v, ok := lookup("REDIS_HOST"); ok {
		c.Store.Redis.Host = v
	}
	if v, ok := lookup("REDIS_USER"); ok {
		c.Store.Redis.Username = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		c.Store.Redis.Password = v
	}
	if v, ok := lookup("REDIS_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: REDIS_PORT %q", ErrInvalidConfig, v)
		}
		c.Store.Redis.Port = port
	}
	if v, ok := lookup("REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: REDIS_DB %q", ErrInvalidConfig, v)
		}
		c.Store.Redis.DB = db
	}
	return nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverRedis, StoreDriverSQLite:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	if c.Spotify.ClientID == "" {
		return fmt.Errorf("%w: spotify client_id", ErrMissingCredentials)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", ErrInvalidConfig, c.Server.Port)
	}

	return nil
}
