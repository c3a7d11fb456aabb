package database

import (
	"errors"
	"fmt"
	"time"
)

// Config defines the database configuration
type Config struct {
	// Connection settings
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"` // disable, require, verify-ca, verify-full

	// Connection pool settings
	MaxIdleConns    int           `mapstructure:"maxidleconns"`
	MaxOpenConns    int           `mapstructure:"maxopenconns"`
	ConnMaxLifetime time.Duration `mapstructure:"connmaxlifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"connmaxidletime"`

	// GORM settings
	LogLevel      string        `mapstructure:"loglevel"`      // silent, error, warn, info
	SlowThreshold time.Duration `mapstructure:"slowthreshold"` // slow query threshold
	SkipDefaultTx bool          `mapstructure:"skipdefaulttx"`
	PrepareStmt   bool          `mapstructure:"preparestmt"`

	// Additional settings
	Timezone    string `mapstructure:"timezone"`
	AutoMigrate bool   `mapstructure:"automigrate"`
}

// DefaultConfig returns the default database configuration
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "postgres",
		SSLMode:  "disable",

		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,

		LogLevel:      "warn",
		SlowThreshold: 200 * time.Millisecond,
		SkipDefaultTx: false,
		PrepareStmt:   true,

		Timezone:    "UTC",
		AutoMigrate: false,
	}
}

// Validate validates the database configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("database host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("database port must be between 1 and 65535")
	}
	if c.User == "" {
		return errors.New("database user is required")
	}
	if c.DBName == "" {
		return errors.New("database name is required")
	}

	switch c.SSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return errors.New("invalid SSL mode, must be one of: disable, require, verify-ca, verify-full")
	}

	switch c.LogLevel {
	case "silent", "error", "warn", "info":
	default:
		return errors.New("invalid log level, must be one of: silent, error, warn, info")
	}

	if c.MaxIdleConns < 0 {
		return errors.New("max idle connections must be >= 0")
	}
	if c.MaxOpenConns < 0 {
		return errors.New("max open connections must be >= 0")
	}
	if c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return errors.New("max idle connections cannot exceed max open connections")
	}
	if c.ConnMaxLifetime < 0 {
		return errors.New("connection max lifetime must be >= 0")
	}
	if c.ConnMaxIdleTime < 0 {
		return errors.New("connection max idle time must be >= 0")
	}
	if c.SlowThreshold < 0 {
		return errors.New("slow threshold must be >= 0")
	}

	return nil
}

// DSN returns the PostgreSQL connection DSN
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.Timezone)
}
