package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          int           `mapstructure:"port"`
	GinMode       string        `mapstructure:"gin_mode"`
	TokenSecret   string        `mapstructure:"token_secret"`
	TokenExpiry   time.Duration `mapstructure:"token_expiry"`
	BoardDBPath   string        `mapstructure:"board_db_path"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	OpenProjects  bool          `mapstructure:"open_projects"`
	TLSCertFile   string        `mapstructure:"tls_cert_file"`
	TLSKeyFile    string        `mapstructure:"tls_key_file"`
}

// LoadConfig reads configuration from an optional yaml file plus
// BOARDSYNC_* environment variables, env taking precedence.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("gin_mode", "release")
	v.SetDefault("token_secret", "")
	v.SetDefault("token_expiry", 7*24*time.Hour)
	v.SetDefault("board_db_path", "")
	v.SetDefault("flush_interval", 5*time.Second)
	v.SetDefault("open_projects", false)
	v.SetDefault("tls_cert_file", "")
	v.SetDefault("tls_key_file", "")

	v.SetEnvPrefix("BOARDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.TokenSecret == "" {
		return Config{}, fmt.Errorf("token_secret is required")
	}
	if cfg.TokenExpiry <= 0 {
		return Config{}, fmt.Errorf("token_expiry must be positive")
	}
	if cfg.FlushInterval <= 0 {
		return Config{}, fmt.Errorf("flush_interval must be positive")
	}
	return cfg, nil
}
