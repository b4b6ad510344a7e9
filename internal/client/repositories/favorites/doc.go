// Package favorites persists the user's favorite stories in the local store.
//
// Favorites are keyed by the remote story id and stamped with the local time
// they were favorited. Adding an id that is already stored fails with
// storage.ErrConstraint; removal is idempotent. Search and sort run over the
// full collection in memory so matching is Unicode case-insensitive and
// ordering is stable relative to the store's enumeration order (by id).
package favorites
