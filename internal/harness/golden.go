package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tiebreak/internal/ir"
)

// GoldenDir is where golden reports live, relative to the test package.
const GoldenDir = "testdata/golden"

// ErrGoldenMismatch is returned by CompareGolden when the report differs.
var ErrGoldenMismatch = errors.New("report does not match golden file")

// Report renders the final tournament of a run as plain text: status,
// every round with its results, then the standings.
func Report(name string, result *Result) []byte {
	var buf bytes.Buffer
	t := result.Tournament

	fmt.Fprintf(&buf, "scenario: %s\n", name)
	fmt.Fprintf(&buf, "status: %s\n", t.Status)

	for _, r := range t.Rounds {
		fmt.Fprintf(&buf, "\nround %d\n", r.Number)
		for _, m := range r.Matches {
			fmt.Fprintf(&buf, "  %s: %s\n", t.MatchLabel(m), resultText(m))
		}
	}

	fmt.Fprintf(&buf, "\nstandings\n")
	for _, s := range result.Standings {
		fmt.Fprintf(&buf, "  %d. %s %s %d\n", s.Rank, s.Player.Name, FormatRecord(s.Record), s.Score)
	}

	return buf.Bytes()
}

func resultText(m ir.Match) string {
	if m.Result == nil {
		return "-"
	}
	return string(*m.Result)
}

// RunWithGolden executes a scenario, fails t on any step or expectation
// error, and compares the report against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, e)
	}

	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares an existing result's report against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Report(scenarioName, result))
}

// CompareGolden checks a report against dir/{name}.golden outside of
// tests. With update set it writes the file instead.
func CompareGolden(dir, name string, report []byte, update bool) error {
	path := filepath.Join(dir, name+".golden")
	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, report, 0o644)
	}
	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, report) {
		return fmt.Errorf("%w: %s", ErrGoldenMismatch, path)
	}
	return nil
}
