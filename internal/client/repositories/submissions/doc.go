// Package submissions persists story submissions that could not be delivered
// while offline, until the replayer confirms them with the server.
//
// Records get an auto-incremented id, a creation timestamp, a random
// idempotency key and synced=false. The only mutation is MarkSynced; a synced
// record is waiting for deletion and is never changed again.
package submissions
