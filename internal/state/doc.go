// Package state holds the live tournament list and applies engine
// reducers to it.
//
// A Container is the single writer: every operation runs under one mutex,
// swaps in a new snapshot, takes the next revision from an engine.Clock and
// then, in order:
//
//  1. appends the operation to the journal (if attached)
//  2. saves the full tournament list through the persister (if attached)
//  3. notifies subscribers with the new snapshot
//
// Journal and persister failures are logged and never returned: the
// in-memory snapshot is authoritative. Operations naming an unknown
// tournament, round, match or player are silent no-ops that report false.
package state
