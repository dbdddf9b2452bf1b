package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for environment overrides, e.g. TEXTRPG_SERVER_PORT
const EnvPrefix = "TEXTRPG"

type Config struct {
	Server      ServerConfig      `yaml:"server" envconfig:"server"`
	Story       StoryConfig       `yaml:"story" envconfig:"story"`
	Persistence PersistenceConfig `yaml:"persistence" envconfig:"persistence"`
	Database    DatabaseConfig    `yaml:"database" envconfig:"database"`
	Hub         HubConfig         `yaml:"hub" envconfig:"hub"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"logging"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"host"`
	Port            int           `yaml:"port" envconfig:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"shutdown_timeout"`
}

type StoryConfig struct {
	Source      string        `yaml:"source" envconfig:"source"` // file path or http(s) URL
	Strict      bool          `yaml:"strict" envconfig:"strict"`
	LoadTimeout time.Duration `yaml:"load_timeout" envconfig:"load_timeout"`
}

type PersistenceConfig struct {
	Backend string `yaml:"backend" envconfig:"backend"` // memory, sqlite, postgres, redis, mysql
	Slot    string `yaml:"slot" envconfig:"slot"`
}

type DatabaseConfig struct {
	MySQL    MySQLConfig    `yaml:"mysql" envconfig:"mysql"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"redis"`
	SQLite   SQLiteConfig   `yaml:"sqlite" envconfig:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres" envconfig:"postgres"`
}

type MySQLConfig struct {
	Host            string        `yaml:"host" envconfig:"host"`
	Port            int           `yaml:"port" envconfig:"port"`
	Username        string        `yaml:"username" envconfig:"username"`
	Password        string        `yaml:"password" envconfig:"password"`
	Database        string        `yaml:"database" envconfig:"database"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host      string `yaml:"host" envconfig:"host"`
	Port      int    `yaml:"port" envconfig:"port"`
	Password  string `yaml:"password" envconfig:"password"`
	DB        int    `yaml:"db" envconfig:"db"`
	PoolSize  int    `yaml:"pool_size" envconfig:"pool_size"`
	KeyPrefix string `yaml:"key_prefix" envconfig:"key_prefix"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" envconfig:"path"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn" envconfig:"dsn"`
}

type HubConfig struct {
	SendBuffer   int           `yaml:"send_buffer" envconfig:"send_buffer"`
	PingInterval time.Duration `yaml:"ping_interval" envconfig:"ping_interval"`
	PongWait     time.Duration `yaml:"pong_wait" envconfig:"pong_wait"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"level"`
	Encoding string `yaml:"encoding" envconfig:"encoding"`
	Output   string `yaml:"output" envconfig:"output"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Story: StoryConfig{
			Source:      "story.json",
			LoadTimeout: 10 * time.Second,
		},
		Persistence: PersistenceConfig{
			Backend: "memory",
			Slot:    "textRPG_save",
		},
		Database: DatabaseConfig{
			MySQL: MySQLConfig{
				Host:            "localhost",
				Port:            3306,
				Username:        "root",
				Database:        "textrpg",
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: time.Hour,
			},
			Redis: RedisConfig{
				Host:      "localhost",
				Port:      6379,
				PoolSize:  10,
				KeyPrefix: "textrpg:",
			},
			SQLite: SQLiteConfig{
				Path: "data/textrpg.db",
			},
		},
		Hub: HubConfig{
			SendBuffer:   16,
			PingInterval: 30 * time.Second,
			PongWait:     60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load reads configuration from a YAML file on top of Default and applies
// TEXTRPG_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Apply environment variable overrides
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
