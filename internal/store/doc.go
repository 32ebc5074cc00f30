// Package store provides SQLite-backed storage for tournament snapshots.
//
// Two tables:
//   - documents: the versioned tournament document, one row per storage key,
//     replaced wholesale on every save
//   - operations: append-only journal of applied operations, ordered by seq
//
// Documents written by older releases are migrated on load (see
// MigrateDocument). Schema changes are tracked with PRAGMA user_version.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - MaxOpenConns=1: Single writer
package store
