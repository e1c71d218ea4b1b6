package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"csfloat-trader/internal/logger"
)

type Config struct {
	CSFloat  CSFloatConfig  `mapstructure:"csfloat"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Log      logger.Config  `mapstructure:"log"`
}

type CSFloatConfig struct {
	Host    string        `mapstructure:"host"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type TrackerConfig struct {
	// Schedule is a cron expression; "off" disables the tracker.
	Schedule string `mapstructure:"schedule"`
}

var envBindings = map[string]string{
	"csfloat.api_key":   "CS_FLOAT_API_KEY",
	"csfloat.host":      "CSFLOAT_HOST",
	"csfloat.timeout":   "HTTP_TIMEOUT",
	"database.url":      "DATABASE_URL",
	"server.port":       "PORT",
	"server.mode":       "GIN_MODE",
	"server.jwt_secret": "JWT_SECRET",
	"tracker.schedule":  "TRACKER_SCHEDULE",
	"log.level":         "LOG_LEVEL",
	"log.format":        "LOG_FORMAT",
	"log.file":          "LOG_FILE",
}

// Load reads config.yaml from the given directories (the working directory
// and ./config when none are given) and overlays environment variables. A
// missing file is not an error; a missing API key is.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetDefault("csfloat.host", "https://csfloat.com/api")
	v.SetDefault("csfloat.timeout", "30s")
	v.SetDefault("database.url", "csfloat_trader.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("tracker.schedule", "@every 15m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", env)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if cfg.CSFloat.APIKey == "" {
		return nil, errors.New("CS_FLOAT_API_KEY is required")
	}
	return &cfg, nil
}
