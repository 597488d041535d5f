package channel

import "encoding/json"

// Request and event method names carried in the wire envelope.
const (
	MethodStartStream            = "start-stream"
	MethodReconnect              = "reconnect"
	MethodLoadSceneViewState     = "load-scene-view-state"
	MethodSyncTime               = "sync-time"
	MethodRefreshToken           = "refresh-token"
	MethodUpdateDimensions       = "update-dimensions"
	MethodUpdateStreamAttributes = "update-stream-attributes"
	MethodAcknowledgeFrame       = "acknowledge-frame"

	// Server-pushed events.
	EventFrame              = "frame"
	EventRequestToReconnect = "request-to-reconnect"
)

// Dimensions is a viewport size in device pixels.
type Dimensions struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// IsZero reports whether the dimensions are unset.
func (d Dimensions) IsZero() bool {
	return d.Width == 0 && d.Height == 0
}

// Color is an RGB frame background color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// StreamAttributes tunes what the server renders into each frame. Nil
// pointer fields mean "leave the server default".
type StreamAttributes struct {
	DepthBuffersEnabled  *bool  `json:"depth_buffers_enabled,omitempty"`
	FeatureLinesEnabled  *bool  `json:"feature_lines_enabled,omitempty"`
	FrameBackgroundColor *Color `json:"frame_background_color,omitempty"`
}

// Orientation is the world orientation reported by the server for a scene.
type Orientation struct {
	Up    [3]float64 `json:"up"`
	Front [3]float64 `json:"front"`
}

// TokenPayload is the credential material the server issues on start,
// reconnect, and refresh.
type TokenPayload struct {
	Token     string  `json:"token"`
	ExpiresIn float64 `json:"expires_in"` // seconds
}

// StartStreamRequest opens a brand-new stream for a stream key.
type StartStreamRequest struct {
	StreamKey        string           `json:"stream_key"`
	Dimensions       Dimensions       `json:"dimensions"`
	StreamAttributes StreamAttributes `json:"stream_attributes"`
	SceneViewStateID string           `json:"scene_view_state_id,omitempty"`
	SuppliedIDs      []string         `json:"supplied_ids,omitempty"`

	// Handshake hints; never required for correctness.
	ClientID  string `json:"client_id,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// StartStreamResponse carries the identifiers and credential for a newly
// started stream.
type StartStreamResponse struct {
	StreamID         string       `json:"stream_id"`
	SceneViewID      string       `json:"scene_view_id"`
	SessionID        string       `json:"session_id"`
	Token            TokenPayload `json:"token"`
	WorldOrientation Orientation  `json:"world_orientation"`
}

// ReconnectRequest re-attaches to an existing stream after a transport
// loss, carrying the prior stream id.
type ReconnectRequest struct {
	StreamID         string           `json:"stream_id"`
	Dimensions       Dimensions       `json:"dimensions"`
	StreamAttributes StreamAttributes `json:"stream_attributes"`
}

// ReconnectResponse carries the refreshed credential for the re-attached
// stream.
type ReconnectResponse struct {
	Token TokenPayload `json:"token"`
}

// LoadSceneViewStateRequest switches the connected stream to a saved view
// state without reopening the transport.
type LoadSceneViewStateRequest struct {
	SceneViewStateID string `json:"scene_view_state_id"`
}

// SyncTimeRequest samples the remote clock. RequestTime is the local "now"
// in Unix milliseconds.
type SyncTimeRequest struct {
	RequestTime int64 `json:"request_time"`
}

// SyncTimeResponse carries the remote "now" at receipt, in Unix
// milliseconds.
type SyncTimeResponse struct {
	ReplyTime int64 `json:"reply_time"`
}

// RefreshTokenResponse carries the replacement credential.
type RefreshTokenResponse struct {
	Token TokenPayload `json:"token"`
}

// UpdateDimensionsRequest pushes a viewport resize to the server.
type UpdateDimensionsRequest struct {
	Dimensions Dimensions `json:"dimensions"`
}

// UpdateStreamAttributesRequest pushes changed stream attributes to the
// server.
type UpdateStreamAttributesRequest struct {
	StreamAttributes StreamAttributes `json:"stream_attributes"`
}

// AcknowledgeFrameRequest confirms delivery of a frame. Fire-and-forget.
type AcknowledgeFrameRequest struct {
	FrameCorrelationID string `json:"frame_correlation_id,omitempty"`
	SequenceNumber     uint64 `json:"sequence_number"`
}

// DepthBuffer is the optional depth payload attached to a frame. The
// server omits the payload on frames where it has not changed; the
// correlation id identifies which render produced it.
type DepthBuffer struct {
	CorrelationID string `json:"correlation_id,omitempty"`
	Payload       []byte `json:"payload,omitempty"`
}

// Frame is one rendered output unit pushed by the server: an image,
// optional depth data, and the scene/camera snapshot it was rendered from.
type Frame struct {
	SequenceNumber     uint64          `json:"sequence_number"`
	FrameCorrelationID string          `json:"frame_correlation_id,omitempty"`
	Dimensions         Dimensions      `json:"dimensions"`
	ImagePayload       []byte          `json:"image_payload"`
	DepthBuffer        *DepthBuffer    `json:"depth_buffer,omitempty"`
	SceneAttributes    json.RawMessage `json:"scene_attributes,omitempty"`
	RenderedAt         int64           `json:"rendered_at"` // remote clock, Unix ms
}

// RequestToReconnectEvent is the server's graceful handoff: close the
// current transport and reopen it without losing the session.
type RequestToReconnectEvent struct {
	Reason string `json:"reason,omitempty"`
}
