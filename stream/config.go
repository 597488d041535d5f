package stream

import (
	"log/slog"
	"time"

	"github.com/vertexvis/stream-go/channel"
	"github.com/vertexvis/stream-go/metric"
	"github.com/vertexvis/stream-go/pkg/retry"
	"github.com/vertexvis/stream-go/sessioncache"
)

// Config holds construction-time configuration for a Coordinator.
type Config struct {
	// Descriptor identifies the rendering service endpoint.
	Descriptor channel.Descriptor
	// Settings tunes each opened connection.
	Settings channel.Settings

	// FrameTimeout bounds how long a load waits for the first rendered
	// frame. Default 15s.
	FrameTimeout time.Duration
	// OfflineThreshold debounces host offline signals: an online signal
	// within the threshold cancels the reconnect. Default 30s.
	OfflineThreshold time.Duration
	// NewStreamRetry is the dial policy for brand-new streams. Default
	// retry.Bounded().
	NewStreamRetry retry.Config
	// ReconnectRetry is the dial policy for re-establishing an existing
	// stream. Default retry.Unbounded().
	ReconnectRetry retry.Config
	// TokenRefreshOffset is subtracted from token expiry when scheduling
	// proactive refresh. Default 30s.
	TokenRefreshOffset time.Duration

	// Cache optionally persists session identifiers per client for faster
	// handshakes. Nil disables the hint.
	Cache sessioncache.Store
	// Metrics optionally records SDK metrics. Nil disables recording.
	Metrics *metric.Metrics
	// Logger receives structured logs. Nil defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the configuration for a rendering endpoint URL.
func DefaultConfig(url string) Config {
	return Config{
		Descriptor:         channel.Descriptor{URL: url},
		FrameTimeout:       15 * time.Second,
		OfflineThreshold:   30 * time.Second,
		NewStreamRetry:     retry.Bounded(),
		ReconnectRetry:     retry.Unbounded(),
		TokenRefreshOffset: 30 * time.Second,
	}
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.FrameTimeout <= 0 {
		c.FrameTimeout = 15 * time.Second
	}
	if c.OfflineThreshold <= 0 {
		c.OfflineThreshold = 30 * time.Second
	}
	if c.NewStreamRetry.MaxAttempts == 0 && c.NewStreamRetry.Schedule == nil {
		c.NewStreamRetry = retry.Bounded()
	}
	if c.ReconnectRetry.Schedule == nil {
		c.ReconnectRetry = retry.Unbounded()
	}
	if c.TokenRefreshOffset <= 0 {
		c.TokenRefreshOffset = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// LoadOption customizes a Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	clientID string
	deviceID string
}

// WithClientID identifies the logical client for session cache lookups.
func WithClientID(id string) LoadOption {
	return func(o *loadOptions) { o.clientID = id }
}

// WithDeviceID identifies the device in the stream handshake. When unset
// the coordinator generates and reuses a random id.
func WithDeviceID(id string) LoadOption {
	return func(o *loadOptions) { o.deviceID = id }
}

// UpdateFields carries the locally applied view settings pushed by Update.
// Nil fields are left unchanged.
type UpdateFields struct {
	Dimensions       *channel.Dimensions
	StreamAttributes *channel.StreamAttributes
	FrameBgColor     *channel.Color
}
