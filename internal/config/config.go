package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "CALLRELAY"

type Config struct {
	Mode               string            `mapstructure:"mode"`
	Port               int               `mapstructure:"port"`
	StaticPath         string            `mapstructure:"static_path"`
	MediaPath          string            `mapstructure:"media_path"`
	ReadLimit          int64             `mapstructure:"read_limit"`
	PingPeriod         time.Duration     `mapstructure:"ping_period"`
	PongWait           time.Duration     `mapstructure:"pong_wait"`
	WriteWait          time.Duration     `mapstructure:"write_wait"`
	SendBuffer         int               `mapstructure:"send_buffer"`
	Secret             string            `mapstructure:"secret"`
	LogLevel           string            `mapstructure:"log_level"`
	LifecycleMode      string            `mapstructure:"lifecycle_mode"`
	BackpressurePolicy string            `mapstructure:"backpressure_policy"`
	RateLimit          RateLimitConfig   `mapstructure:"rate_limit"`
	ICEServers         []ICEServerConfig `mapstructure:"ice_servers"`
	Redis              RedisConfig       `mapstructure:"redis"`
}

type RateLimitConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName if present and falls back to defaults otherwise.
// CALLRELAY_* environment variables override both.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("media_path", "./web/media")
	v.SetDefault("read_limit", 64*1024)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("lifecycle_mode", "permissive")
	v.SetDefault("backpressure_policy", "kick")
	v.SetDefault("rate_limit.limit", 200)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("read_limit must be positive, got %d", c.ReadLimit)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send_buffer must be positive, got %d", c.SendBuffer)
	}
	if c.PongWait <= 0 || c.PingPeriod <= 0 || c.WriteWait <= 0 {
		return errors.New("ping_period, pong_wait and write_wait must be positive")
	}
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping_period (%s) must be less than pong_wait (%s)", c.PingPeriod, c.PongWait)
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.Interval <= 0 {
		return errors.New("rate_limit.limit and rate_limit.interval must be positive")
	}
	return nil
}
