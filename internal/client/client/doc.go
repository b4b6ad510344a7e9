// Package client talks to the remote story API.
//
// Client is the transport-agnostic contract; HTTPClient implements it over
// the REST API (JSON envelopes plus a multipart story upload). The bearer
// credential is passed per call, so queued submissions can be sent with the
// credential captured when they were queued.
//
// # Error Handling
//
// Failures are reported with sentinel errors matched by errors.Is:
// ErrUnavailable when the server cannot be reached, ErrUnauthorized for 401
// and 403 answers, and ErrRemoteRejected (carried by *RemoteError) for any
// other non-success status.
package client
