package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
)

// AssertionError is returned when an expectation does not hold.
type AssertionError struct {
	Check    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

// checkExpectations compares the final tournament with exp and returns
// every mismatch.
func checkExpectations(t ir.Tournament, standings []engine.Standing, exp Expectation) []error {
	var errs []error

	if exp.Status != "" && string(t.Status) != exp.Status {
		errs = append(errs, &AssertionError{Check: "status", Expected: exp.Status, Actual: string(t.Status)})
	}

	if exp.Rounds != nil && len(t.Rounds) != *exp.Rounds {
		errs = append(errs, &AssertionError{
			Check:    "rounds",
			Expected: fmt.Sprint(*exp.Rounds),
			Actual:   fmt.Sprint(len(t.Rounds)),
		})
	}

	if exp.Viewing != nil {
		actual := "none"
		if idx, ok := t.ViewedRoundIndex(); ok {
			actual = fmt.Sprintf("round %d", t.Rounds[idx].Number)
		}
		if expected := fmt.Sprintf("round %d", *exp.Viewing); actual != expected {
			errs = append(errs, &AssertionError{Check: "viewing", Expected: expected, Actual: actual})
		}
	}

	if exp.Pairings != nil {
		if err := checkPairings(t, exp.Pairings); err != nil {
			errs = append(errs, err)
		}
	}

	if exp.Standings != nil {
		errs = append(errs, checkStandings(standings, exp.Standings)...)
	}

	return errs
}

// checkPairings compares the viewed round's matches, in order.
func checkPairings(t ir.Tournament, expected []string) error {
	actual := ViewedPairings(t)
	if slices.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Check:    "pairings",
		Expected: "[" + strings.Join(expected, ", ") + "]",
		Actual:   "[" + strings.Join(actual, ", ") + "]",
	}
}

func checkStandings(standings []engine.Standing, expected []StandingExpectation) []error {
	if len(standings) != len(expected) {
		return []error{&AssertionError{
			Check:    "standings",
			Expected: fmt.Sprintf("%d rows", len(expected)),
			Actual:   fmt.Sprintf("%d rows", len(standings)),
		}}
	}

	var errs []error
	for i, want := range expected {
		got := standings[i]
		check := fmt.Sprintf("standings row %d", i+1)
		if got.Player.Name != want.Player {
			errs = append(errs, &AssertionError{Check: check + " player", Expected: want.Player, Actual: got.Player.Name})
			continue
		}
		if want.Rank != 0 && got.Rank != want.Rank {
			errs = append(errs, &AssertionError{
				Check:    check + " rank",
				Expected: fmt.Sprint(want.Rank),
				Actual:   fmt.Sprint(got.Rank),
			})
		}
		if want.Record != "" && FormatRecord(got.Record) != want.Record {
			errs = append(errs, &AssertionError{Check: check + " record", Expected: want.Record, Actual: FormatRecord(got.Record)})
		}
		if want.Score != nil && got.Score != *want.Score {
			errs = append(errs, &AssertionError{
				Check:    check + " score",
				Expected: fmt.Sprint(*want.Score),
				Actual:   fmt.Sprint(got.Score),
			})
		}
	}
	return errs
}

// ViewedPairings renders the viewed round's matches by player name.
func ViewedPairings(t ir.Tournament) []string {
	idx, ok := t.ViewedRoundIndex()
	if !ok {
		return []string{}
	}
	matches := t.Rounds[idx].Matches
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = t.MatchLabel(m)
	}
	return out
}

// FormatRecord renders a record as wins-losses-draws.
func FormatRecord(r ir.Record) string {
	return fmt.Sprintf("%d-%d-%d", r.Wins, r.Losses, r.Draws)
}
