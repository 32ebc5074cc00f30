// Package engine implements tournament scoring, Swiss pairing and the
// lifecycle reducers.
//
// ARCHITECTURE:
//
// Pure Reducers:
// Every lifecycle operation takes a tournament snapshot and returns a new
// snapshot plus whether anything changed. Inputs are never mutated; callers
// that hold state (internal/state) swap the returned snapshot in.
//
// Packed Scores:
// A player's ranking score packs four tiebreak components into one int64
// so that plain integer comparison orders players:
//
//	points×10^9 + OMW×10^6 + OOMW×10^3 + lossPenalty
//
// OMW and OOMW are opponents' and opponents' opponents' match-win
// percentages scaled to 0..999. The loss penalty is the sum of squared
// round numbers lost, capped at 999, so losing late ranks above losing early.
//
// Pairing:
// Players are optionally shuffled, stably sorted by score, and paired by a
// forward scan that avoids rematches when possible. An odd player out gets
// a bye, preferring the player with the fewest prior byes and then the
// lowest score.
//
// Determinism:
// Identifiers, shuffles and timestamps come from the Engine's injected
// sources. A seeded Engine with a fixed ID generator reproduces every
// pairing exactly.
package engine
