// Package ir provides the domain types shared by every tiebreak package.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Points are integers; no float ever reaches a persisted snapshot
//   - Result, Status and ShufflePolicy are closed string enums
//   - JSON tags use snake_case
//   - Snapshots are values: reducers Clone before changing anything
package ir
