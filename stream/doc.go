// Package stream coordinates the lifecycle of a rendering stream session:
// resolving resource locators, opening and re-establishing the duplex
// channel, keeping credentials fresh, and publishing state transitions and
// rendered frames to subscribers.
//
// The session moves through a closed set of states:
//
//	                 Load                    first frame
//	Disconnected ----------> Connecting --------------------> Connected
//	     ^                       |                            |      ^
//	     | Disconnect            | failure       close/signal |      | re-attach
//	     |                       v                            v      |
//	     +----------------- ConnectionFailed <----------- Reconnecting
//
// A Coordinator is safe for concurrent use. Lifecycle calls that overlap
// resolve by recency: the newest Load or Disconnect wins and older
// in-flight attempts discard their outcomes.
package stream
