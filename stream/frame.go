package stream

import "github.com/vertexvis/stream-go/channel"

// mergeFrame folds the previous frame's depth buffer into an incoming
// frame that omits it. The server elides the depth payload on frames where
// it has not changed; a changed correlation id means the omission is real
// and the (possibly empty) new value must be accepted.
//
// Returns the frame to hold and whether the depth buffer was carried
// forward.
func mergeFrame(prev, next *channel.Frame) (*channel.Frame, bool) {
	if next == nil {
		return prev, false
	}
	if prev == nil || prev.DepthBuffer == nil || len(prev.DepthBuffer.Payload) == 0 {
		return next, false
	}

	switch {
	case next.DepthBuffer == nil:
		// Depth elided entirely: unchanged since the previous frame.
		merged := *next
		merged.DepthBuffer = prev.DepthBuffer
		return &merged, true
	case len(next.DepthBuffer.Payload) == 0 &&
		(next.DepthBuffer.CorrelationID == "" ||
			next.DepthBuffer.CorrelationID == prev.DepthBuffer.CorrelationID):
		// Payload elided with a matching (or absent) correlation id.
		merged := *next
		merged.DepthBuffer = prev.DepthBuffer
		return &merged, true
	default:
		// Fresh payload, or a changed correlation id forcing acceptance of
		// the new (possibly empty) value.
		return next, false
	}
}
