// Package main implements streamview, a headless viewer for rendering
// stream sessions. It connects to a rendering endpoint, loads a resource
// locator, and keeps the session alive across transport loss, logging
// state transitions and frame arrivals, with optional Prometheus metrics
// and a pluggable session cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vertexvis/stream-go/channel"
	"github.com/vertexvis/stream-go/metric"
	"github.com/vertexvis/stream-go/sessioncache"
	"github.com/vertexvis/stream-go/stream"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "streamview"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("streamview failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfig(logger, cliCfg.ConfigPath)
	if err != nil {
		return err
	}

	logger.Info("starting streamview",
		"endpoint", cfg.Endpoint.URL,
		"locator", cliCfg.Locator,
		"cache_backend", cfg.Cache.Backend)

	cache, err := buildCache(cfg.Cache)
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	registry := metric.NewRegistry()
	metricsSrv := startMetricsServer(cfg.Metrics, registry, logger)
	if metricsSrv != nil {
		defer shutdownMetricsServer(metricsSrv, logger)
	}

	streamCfg := stream.DefaultConfig(cfg.Endpoint.URL)
	streamCfg.Settings = channel.Settings{
		HandshakeTimeout: cfg.Endpoint.HandshakeTimeout,
		RequestTimeout:   cfg.Endpoint.RequestTimeout,
	}
	streamCfg.FrameTimeout = cfg.Stream.FrameTimeout
	streamCfg.OfflineThreshold = cfg.Stream.OfflineThreshold
	streamCfg.TokenRefreshOffset = cfg.Stream.TokenRefreshOffset
	streamCfg.Cache = cache
	streamCfg.Metrics = registry.Metrics()
	streamCfg.Logger = logger

	coordinator := stream.New(channel.NewWebSocket(logger), streamCfg)
	defer coordinator.Disconnect()

	coordinator.OnStateChanged(func(change stream.StateChange) {
		logger.Info("session state changed",
			"from", change.Previous.String(),
			"to", change.Current.String())
	})
	coordinator.OnFrame(func(f *channel.Frame) {
		logger.Debug("frame received",
			"sequence", f.SequenceNumber,
			"width", f.Dimensions.Width,
			"height", f.Dimensions.Height,
			"has_depth", f.DepthBuffer != nil)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := coordinator.Update(ctx, stream.UpdateFields{
		Dimensions: &channel.Dimensions{Width: cfg.Stream.Width, Height: cfg.Stream.Height},
	}); err != nil {
		return err
	}

	var opts []stream.LoadOption
	if cliCfg.ClientID != "" {
		opts = append(opts, stream.WithClientID(cliCfg.ClientID))
	}
	if cliCfg.DeviceID != "" {
		opts = append(opts, stream.WithDeviceID(cliCfg.DeviceID))
	}
	if err := coordinator.Load(ctx, cliCfg.Locator, opts...); err != nil {
		return fmt.Errorf("load %s: %w", cliCfg.Locator, err)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

// buildCache constructs the configured session cache backend. A "none"
// backend returns nil, which disables session hints entirely.
func buildCache(cfg CacheConfig) (sessioncache.Store, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "memory":
		return sessioncache.NewMemoryStore(cfg.TTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		store, err := sessioncache.NewRedisStore(sessioncache.RedisConfig{
			Client: client,
			TTL:    cfg.TTL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

func startMetricsServer(cfg MetricsConfig, registry *metric.Registry, logger *slog.Logger) *http.Server {
	if cfg.Addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func shutdownMetricsServer(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown failed", "error", err)
	}
}
