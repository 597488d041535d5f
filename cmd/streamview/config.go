package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the file and environment configuration for the viewer.
type Config struct {
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// EndpointConfig identifies the rendering service.
type EndpointConfig struct {
	URL              string        `mapstructure:"url"`
	HandshakeTimeout time.Duration `mapstructure:"handshakeTimeout"`
	RequestTimeout   time.Duration `mapstructure:"requestTimeout"`
}

// StreamConfig tunes the session coordinator.
type StreamConfig struct {
	Width              uint32        `mapstructure:"width"`
	Height             uint32        `mapstructure:"height"`
	FrameTimeout       time.Duration `mapstructure:"frameTimeout"`
	OfflineThreshold   time.Duration `mapstructure:"offlineThreshold"`
	TokenRefreshOffset time.Duration `mapstructure:"tokenRefreshOffset"`
}

// CacheConfig selects the session cache backend.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"` // none, memory, redis
	RedisAddr string        `mapstructure:"redisAddr"`
	RedisDB   int           `mapstructure:"redisDB"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// MetricsConfig controls the Prometheus endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// loadConfig reads configuration from a file and environment variables.
func loadConfig(logger *slog.Logger, fileName string) (*Config, error) {
	v := viper.New()

	v.SetDefault("endpoint.url", "wss://stream.vertexvis.com/ws")
	v.SetDefault("endpoint.handshakeTimeout", "15s")
	v.SetDefault("endpoint.requestTimeout", "15s")
	v.SetDefault("stream.width", 1280)
	v.SetDefault("stream.height", 720)
	v.SetDefault("stream.frameTimeout", "15s")
	v.SetDefault("stream.offlineThreshold", "30s")
	v.SetDefault("stream.tokenRefreshOffset", "30s")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redisAddr", "localhost:6379")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("metrics.addr", "")

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STREAMVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logger.Warn("config file not found, relying on defaults and env vars",
			"config", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.Cache.Backend {
	case "none", "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
	if cfg.Endpoint.URL == "" {
		return nil, fmt.Errorf("endpoint.url is required")
	}
	return &cfg, nil
}
