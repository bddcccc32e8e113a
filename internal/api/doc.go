// Package api provides the HTTP client for the statement backend. It
// handles request/response serialization, typed API errors, and retry with
// backoff for transient failures.
//
// Two kinds of calls go through it:
//
//   - Statement fetches (POST /bill-statement/encrypt and
//     /payment-history/encrypt), which return an encrypted envelope and
//     retry transparently on transient status codes.
//   - Device registration (POST /device/register), which does NOT retry
//     here: the registration handshake owns its own bounded-attempt policy
//     with linear backoff, so the client performs exactly one request per
//     RegisterDevice call.
//
// Use errors.Is to check for specific error conditions:
//
//	if errors.Is(err, api.ErrStatementNotFound) {
//	    // Handle missing statement
//	}
//
// The Client type is safe for concurrent use.
package api
