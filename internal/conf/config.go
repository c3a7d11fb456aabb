package conf

import (
	"fmt"

	"github.com/sitedesk/inspection-backend/internal/pkg/database"
	"github.com/sitedesk/inspection-backend/internal/pkg/logger"
	"github.com/sitedesk/inspection-backend/internal/pkg/minio"
	"github.com/spf13/viper"
)

// Config is the root configuration of the service
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	MinIO    minio.Config    `mapstructure:"minio"`
	Log      logger.Config   `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// RedisConfig configures the cache connection
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the host:port address of the Redis server
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads the configuration file at path, with environment overrides
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
