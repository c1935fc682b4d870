package sqlrows

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Connection defaults.
const (
	DefaultDriver = "mysql"
	DefaultHost   = "localhost"
	DefaultPort   = 3306
)

// Config describes a database connection.
type Config struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Driver   string `yaml:"driver"`
}

// WithDefaults returns c with empty host, port and driver filled in.
func (c Config) WithDefaults() Config {
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	return c
}

// Validate checks that c names a database.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("%w: database is required", ErrConfig)
	}
	switch c.Driver {
	case "mysql", "sqlite3":
		return nil
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrConfig, c.Driver)
	}
}

// DSN returns the data source name for c's driver. For sqlite3 the database
// is a file path (or ":memory:").
func (c Config) DSN() string {
	if c.Driver == "sqlite3" {
		return c.Database
	}
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	return mc.FormatDSN()
}

// LoadConfig reads a YAML connection config from path and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Open opens a database for cfg and verifies the connection. The caller
// registers the driver by importing it.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
