package ir

import (
	"encoding/json"
	"fmt"
)

// Result is the recorded outcome of a match.
//
//   - ResultA: player A wins.
//   - ResultB: player B wins. Not valid for byes.
//   - ResultDraw: both players draw. Not valid for byes.
//   - ResultLoss: player A is charged a loss. On a paired match player B is
//     charged a loss too (double loss). On a bye it replaces the automatic win.
type Result string

const (
	ResultA    Result = "A"
	ResultB    Result = "B"
	ResultDraw Result = "draw"
	ResultLoss Result = "loss"
)

// ValidResults lists every result variant in declaration order.
var ValidResults = []Result{ResultA, ResultB, ResultDraw, ResultLoss}

// ParseResult converts the wire form of a result.
func ParseResult(s string) (Result, error) {
	for _, r := range ValidResults {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid result %q: must be one of %v", s, ValidResults)
}

// AllowedFor reports whether the result may be recorded on m.
func (r Result) AllowedFor(m Match) bool {
	switch r {
	case ResultA, ResultLoss:
		return true
	case ResultB, ResultDraw:
		return !m.IsBye()
	default:
		return false
	}
}

// UnmarshalJSON rejects unknown result strings.
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Status is the lifecycle stage of a tournament.
type Status string

const (
	StatusSetup      Status = "setup"
	StatusInProgress Status = "in-progress"
	StatusTopCut     Status = "top-cut"
	StatusFinished   Status = "finished"
)

// UnmarshalJSON rejects unknown statuses.
func (s *Status) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch Status(v) {
	case StatusSetup, StatusInProgress, StatusTopCut, StatusFinished:
		*s = Status(v)
		return nil
	default:
		return fmt.Errorf("invalid tournament status %q", v)
	}
}

// ShufflePolicy controls when players are shuffled before ranking.
type ShufflePolicy string

const (
	ShuffleAllRounds      ShufflePolicy = "shuffle-all-rounds"
	ShuffleFirstRoundOnly ShufflePolicy = "shuffle-first-round-only"
	NeverShuffle          ShufflePolicy = "never-shuffle"
)

// ValidShufflePolicies lists every policy in declaration order.
var ValidShufflePolicies = []ShufflePolicy{ShuffleAllRounds, ShuffleFirstRoundOnly, NeverShuffle}

// ParseShufflePolicy converts the wire form of a policy.
func ParseShufflePolicy(s string) (ShufflePolicy, error) {
	for _, p := range ValidShufflePolicies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid shuffle policy %q: must be one of %v", s, ValidShufflePolicies)
}

// ShuffleRound reports whether pairings for the given 1-based round
// number are shuffled before ranking.
func (p ShufflePolicy) ShuffleRound(number int) bool {
	switch p {
	case ShuffleAllRounds:
		return true
	case ShuffleFirstRoundOnly:
		return number == 1
	case NeverShuffle:
		return false
	default:
		return true
	}
}
