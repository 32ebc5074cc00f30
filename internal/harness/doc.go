// Package harness runs tournament scenarios described in YAML.
//
// A scenario names its players and scoring, then lists steps: record a
// result, advance, navigate, top cut, rename, finish. Each step runs through
// a real state.Container backed by an in-memory store, with sequential IDs,
// a fixed seed and a frozen clock, so the same scenario always produces the
// same tournament.
//
// After the steps, the harness checks the scenario's expectations (status,
// round count, pairings, standings), reads the operation journal back as a
// trace and verifies that the persisted snapshot matches the live one.
//
// Golden files hold a plain-text report of the final tournament:
//
//	go test ./internal/harness -update
//
// regenerates them under testdata/golden.
package harness
