// Package store provides the persisted slot store that backs the cart and
// the local order log.
//
// A slot is a named value overwritten wholesale on every write. Two
// implementations satisfy the Slots capability:
//   - Store: SQLite-backed, one row per slot, survives process restarts
//   - Memory: map-backed, for tests and throwaway sessions
//
// Items layers the storefront records on top of Slots. Its reads fail open:
// a missing or corrupt slot reads as an empty collection and is never
// surfaced to the caller. The store is a best-effort client cache, not a
// system of record.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Concurrent processes writing the same slot overwrite each other; the last
// write wins and nothing is merged.
package store
