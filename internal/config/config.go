package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort     string        `mapstructure:"SERVER_PORT"`
	APIBaseURL     string        `mapstructure:"API_BASE_URL"`
	Env            string        `mapstructure:"APP_ENV"`
	HTTPTimeout    time.Duration `mapstructure:"HTTP_TIMEOUT"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	CatalogTTL     time.Duration `mapstructure:"CATALOG_TTL"`
	SessionIdleTTL time.Duration `mapstructure:"SESSION_IDLE_TTL"`
	IdentitySecret string        `mapstructure:"IDENTITY_SECRET"`
}

// IsDevelopment reports whether programmer errors should panic instead of
// being logged and surfaced as 500s.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("API_BASE_URL", "http://localhost:4000/api")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CATALOG_TTL", "10m")
	v.SetDefault("SESSION_IDLE_TTL", "2h")
	v.SetDefault("IDENTITY_SECRET", "")

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
