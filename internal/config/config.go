package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feelsunbreeze/iclass_portal_tui/internal/portal"
)

const EnvPrefix = "ICLASS"

type SemesterStart struct {
	Year  int `mapstructure:"year" validate:"gte=2000,lte=2100"`
	Month int `mapstructure:"month" validate:"gte=1,lte=12"`
	Day   int `mapstructure:"day" validate:"gte=1,lte=31"`
}

func (s SemesterStart) Date() portal.Date {
	return portal.NewDate(s.Year, s.Month, s.Day)
}

type Features struct {
	BatchSign bool `mapstructure:"batch_sign"`
	// AutoRefresh is accepted for compatibility with existing config files
	// and has no effect.
	AutoRefresh bool `mapstructure:"auto_refresh"`
}

type Config struct {
	// BaseURL, when set, replaces scheme and host of every API endpoint.
	BaseURL       string        `mapstructure:"base_url" validate:"omitempty,url"`
	SemesterStart SemesterStart `mapstructure:"semester_start"`
	Features      Features      `mapstructure:"features"`
	// RequestTimeout bounds every single HTTP request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	// RetryAttempts is read but not acted upon; failed requests are not retried.
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"gte=0"`
	SignDelay     time.Duration `mapstructure:"sign_delay" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("base_url", "")
	v.SetDefault("semester_start.year", 2025)
	v.SetDefault("semester_start.month", 9)
	v.SetDefault("semester_start.day", 1)
	v.SetDefault("features.batch_sign", true)
	v.SetDefault("features.auto_refresh", false)
	v.SetDefault("request_timeout", portal.DefaultTimeout)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("sign_delay", portal.DefaultSignDelay)
}

func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Decoding the defaults alone cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load builds the configuration from defaults, an optional config file, an
// optional .env file and ICLASS_* environment variables, in increasing order
// of precedence. Empty paths are skipped.
func Load(configPath, dotEnvPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if dotEnvPath == "" {
		dotEnvPath = filepath.Join(".", ".env")
	}
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, fmt.Errorf("config.godotenv(%s): %w", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config.os.Stat(%s): %w", dotEnvPath, err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.ReadInConfig(%s): %w", configPath, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config.Unmarshal: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config.validate: %w", err)
	}
	return cfg, nil
}

func (c *Config) Endpoints() (portal.Endpoints, error) {
	return portal.EndpointsFor(c.BaseURL)
}
