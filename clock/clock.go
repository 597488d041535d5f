// Package clock reconciles local wall-clock time against a remote time
// sample so consumers can translate timestamps embedded in server messages.
//
// A sample is captured once per connection attempt via a single sync-time
// round trip: the client sends its local "now", the server replies with its
// own "now" at receipt. The pair fixes a constant offset for the life of
// that connection; there is no ongoing drift correction. Reconnects take a
// fresh sample.
//
// The wire format carries timestamps as milliseconds since the Unix epoch
// (UTC); the ms-epoch helpers centralize that conversion. A value of 0
// means "not set".
package clock

import "time"

// Synchronized is a fixed local/remote clock offset sampled once per
// connection attempt.
type Synchronized struct {
	// KnownLocalTime is the local wall-clock instant the sample was taken.
	KnownLocalTime time.Time
	// KnownRemoteTime is the remote wall-clock instant reported back.
	KnownRemoteTime time.Time
}

// NewSynchronized creates a synchronized clock from one sync-time exchange.
func NewSynchronized(localTime, remoteTime time.Time) Synchronized {
	return Synchronized{KnownLocalTime: localTime, KnownRemoteTime: remoteTime}
}

// IsZero reports whether the clock has never been sampled.
func (s Synchronized) IsZero() bool {
	return s.KnownLocalTime.IsZero() && s.KnownRemoteTime.IsZero()
}

// Offset returns the remote clock's lead over the local clock. Negative
// when the remote clock is behind.
func (s Synchronized) Offset() time.Duration {
	return s.KnownRemoteTime.Sub(s.KnownLocalTime)
}

// RemoteToLocal translates a remote timestamp into the local clock domain.
func (s Synchronized) RemoteToLocal(remote time.Time) time.Time {
	return remote.Add(-s.Offset())
}

// LocalToRemote translates a local timestamp into the remote clock domain.
func (s Synchronized) LocalToRemote(local time.Time) time.Time {
	return local.Add(s.Offset())
}

// RemoteNow returns the current instant expressed in the remote clock
// domain.
func (s Synchronized) RemoteNow() time.Time {
	return s.LocalToRemote(time.Now())
}

// NowMs returns the current local time as Unix milliseconds.
func NowMs() int64 {
	return time.Now().UnixMilli()
}

// ToUnixMs converts a time.Time to Unix milliseconds. The zero time maps
// to 0.
func ToUnixMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMs converts Unix milliseconds to time.Time. 0 maps to the zero
// time.
func FromUnixMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
