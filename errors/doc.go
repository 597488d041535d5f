// Package errors implements the error taxonomy for the stream session SDK.
//
// # Overview
//
// Every failure that can surface from a session load maps to one of four
// closed kinds:
//
//   - KindInvalidResourceLocator: malformed or unrecognized locator (never retried)
//   - KindTransportConnection: transport-layer open failure (retried per policy)
//   - KindStreamRequestFailed: server rejected a protocol request (surfaced)
//   - KindFrameRenderTimeout: no frame arrived within the load timeout (surfaced)
//
// Kinds are carried by the *Error type, which supports errors.Is/As and
// wrapping chains. Classification drives two behaviors in the coordinator:
// whether a connection attempt is retried (IsRetryable) and the diagnostic
// published in the ConnectionFailed state (MessageOf).
//
// # Usage
//
// Construct classified errors at the failure site:
//
//	if err := conn.Dial(ctx); err != nil {
//	    return errors.NewTransportConnection("unable to connect to rendering host", err)
//	}
//
// Test by kind rather than string matching:
//
//	if errors.KindOf(err) == errors.KindStreamRequestFailed {
//	    // do not retry, surface to caller
//	}
//
// Wrap adds call-site context in the standard
// "component.method: action failed" shape without changing classification.
package errors
