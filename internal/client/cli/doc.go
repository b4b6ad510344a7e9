// Package cli provides the interactive story command-line client.
//
// It wires configuration, the local store, the request cache, API services,
// the sync replayer and the notification gateway behind a small REPL.
// Typical flow: log in, browse stories (served from cache when offline),
// share new stories (queued while offline and replayed once the connection
// is back) and keep a local list of favorites.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewApp and runREPL for details.
package cli
