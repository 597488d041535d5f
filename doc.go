// Package streamgo is an SDK for managing rendering stream sessions
// against the Vertex platform: server-side rendered 3D scenes delivered
// as a stream of frames over a duplex websocket channel.
//
// # Architecture
//
// The SDK is organized around a session coordinator and the supporting
// packages it composes:
//
//	┌─────────────────────────────────────┐
//	│         stream.Coordinator          │  Session state machine
//	│  (load, reconnect, update, frames)  │  Last-caller-wins lifecycle
//	└─────────────────────────────────────┘
//	           ↓ composes
//	┌──────────┬──────────┬───────────────┐
//	│ resource │  token   │     clock     │  Locator parsing, credential
//	│          │          │               │  refresh, remote clock skew
//	├──────────┴──────────┴───────────────┤
//	│              channel                │  Duplex request/response and
//	│   (websocket, request correlation)  │  event transport
//	├─────────────────────────────────────┤
//	│  sessioncache │ metric │ pkg/retry  │  Session resumption hints,
//	│               │        │ pkg/events │  instrumentation, policies
//	└─────────────────────────────────────┘
//
// A typical embedding creates a channel, configures a Coordinator, and
// loads a resource locator:
//
//	ch := channel.NewWebSocket(logger)
//	coordinator := stream.New(ch, stream.DefaultConfig("wss://stream.vertexvis.com/ws"))
//	coordinator.OnFrame(func(f *channel.Frame) { render(f) })
//	if err := coordinator.Load(ctx, "urn:vertexvis:stream-key:abc123"); err != nil {
//		// resolution or connection failure, session is in ConnectionFailed
//	}
//
// The coordinator keeps the session alive from there: transport loss,
// server-requested handoffs, and sustained offline periods all re-attach
// to the same stream without caller involvement, and credentials refresh
// proactively ahead of expiry.
//
// The cmd/streamview command wraps the SDK as a headless viewer for
// inspection and soak testing.
package streamgo
