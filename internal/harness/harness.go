package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
	"github.com/roach88/tiebreak/internal/state"
	"github.com/roach88/tiebreak/internal/store"
	"github.com/roach88/tiebreak/internal/testutil"
)

// Harness is the scenario execution engine for one run.
// It drives a container wired to a fresh in-memory store.
type Harness struct {
	ctx          context.Context
	container    *state.Container
	snapshots    *store.Snapshots
	store        *store.Store
	tournamentID string
	result       *Result
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Create the tournament from the scenario's players and scoring
// 3. Execute steps, checking rejections and intermediate pairings
// 4. Check final expectations
// 5. Read back the journal and the persisted snapshot
//
// Step and expectation failures are collected in the result. The error is
// reserved for failures to set the run up.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eng := engine.New(
		engine.WithIDs(testutil.NewSequenceGenerator("id")),
		engine.WithSeed(scenario.Seed),
		engine.WithNow(testutil.Fixed(testutil.Epoch)),
	)
	snapshots := st.Snapshots(store.DefaultKey, testutil.Fixed(testutil.Epoch))
	c := state.New(
		state.WithEngine(eng),
		state.WithJournal(st),
		state.WithPersister(snapshots),
		state.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	t, err := c.CreateTournament(ctx, scenario.Name, scenario.Players, scenario.Scoring.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	h := &Harness{
		ctx:          ctx,
		container:    c,
		snapshots:    snapshots,
		store:        st,
		tournamentID: t.ID,
		result:       NewResult(),
	}

	for i, step := range scenario.Steps {
		h.runStep(i+1, step)
	}

	final, _ := c.Tournament(t.ID)
	h.result.Tournament = final
	h.result.Standings = engine.Standings(final)

	for _, err := range checkExpectations(final, h.result.Standings, scenario.Expect) {
		h.result.AddError(err.Error())
	}

	if err := h.collectTrace(); err != nil {
		return nil, err
	}
	if err := h.verifySnapshot(final); err != nil {
		return nil, err
	}

	return h.result, nil
}

func (h *Harness) runStep(n int, step Step) {
	kind, err := step.Kind()
	if err != nil {
		h.result.AddError(fmt.Sprintf("step %d: %v", n, err))
		return
	}

	if kind != StepCheck {
		applied, err := h.apply(kind, step)
		if err != nil {
			h.result.AddError(fmt.Sprintf("step %d (%s): %v", n, kind, err))
			return
		}
		if applied == step.Rejected {
			h.result.AddError(fmt.Sprintf("step %d (%s): applied=%t, want %t", n, kind, applied, !step.Rejected))
			return
		}
	}

	if step.Pairings != nil {
		t, _ := h.container.Tournament(h.tournamentID)
		if err := checkPairings(t, step.Pairings); err != nil {
			h.result.AddError(fmt.Sprintf("step %d: %v", n, err))
		}
	}
}

// apply performs one step against the container.
func (h *Harness) apply(kind string, step Step) (bool, error) {
	ctx, id := h.ctx, h.tournamentID
	switch kind {
	case StepRecord:
		t, _ := h.container.Tournament(id)
		round, match, err := findMatch(t, step.Record.Match)
		if err != nil {
			return false, err
		}
		result, err := parseStepResult(step.Record.Result)
		if err != nil {
			return false, err
		}
		return h.container.RecordResult(ctx, id, round.ID, match.ID, result), nil
	case StepRename:
		t, _ := h.container.Tournament(id)
		playerID, err := findPlayer(t, step.Rename.Player)
		if err != nil {
			return false, err
		}
		return h.container.RenamePlayer(ctx, id, playerID, step.Rename.Name), nil
	case StepAdvance:
		return h.container.AdvanceToNextRound(ctx, id), nil
	case StepNavigate:
		dir, err := engine.ParseDirection(step.Navigate)
		if err != nil {
			return false, err
		}
		return h.container.Navigate(ctx, id, dir), nil
	case StepTopCut:
		return h.container.TopCut(ctx, id, step.TopCut), nil
	case StepFinish:
		return h.container.Finish(ctx, id), nil
	default:
		return false, fmt.Errorf("unknown step kind %q", kind)
	}
}

// collectTrace reads the journal back and checks that its last entry
// describes the final tournament.
func (h *Harness) collectTrace() error {
	ops, err := h.store.ReadOperations(h.ctx, h.tournamentID)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	for _, op := range ops {
		h.result.AddTrace(op)
	}
	if len(ops) == 0 {
		h.result.AddError("journal is empty")
		return nil
	}
	want, err := ir.TournamentDigest(h.result.Tournament)
	if err != nil {
		return err
	}
	if got := ops[len(ops)-1].StateDigest; got != want {
		h.result.AddError(fmt.Sprintf("journal state digest %s does not match final tournament %s", got, want))
	}
	return nil
}

// verifySnapshot reloads the persisted document and compares it with the
// live tournament.
func (h *Harness) verifySnapshot(final ir.Tournament) error {
	saved, err := h.snapshots.Load(h.ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if len(saved) != 1 {
		h.result.AddError(fmt.Sprintf("snapshot holds %d tournaments, want 1", len(saved)))
		return nil
	}
	got, err := ir.TournamentDigest(saved[0])
	if err != nil {
		return err
	}
	if want := ir.MustTournamentDigest(final); got != want {
		h.result.AddError("persisted snapshot differs from the live tournament")
	}
	return nil
}

// findMatch resolves a "P1 v P2" or "P5 bye" reference in the viewed round.
func findMatch(t ir.Tournament, ref string) (ir.Round, ir.Match, error) {
	idx, ok := t.ViewedRoundIndex()
	if !ok {
		return ir.Round{}, ir.Match{}, fmt.Errorf("no rounds to record %q in", ref)
	}
	round := t.Rounds[idx]
	ref = strings.TrimSpace(ref)
	for _, m := range round.Matches {
		if t.MatchLabel(m) == ref {
			return round, m, nil
		}
	}
	return ir.Round{}, ir.Match{}, fmt.Errorf("no match %q in round %d", ref, round.Number)
}

func findPlayer(t ir.Tournament, name string) (string, error) {
	for _, p := range t.Players {
		if p.Name == name {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("no player named %q", name)
}

// parseStepResult maps "clear" to nil and everything else through
// ir.ParseResult.
func parseStepResult(s string) (*ir.Result, error) {
	if s == "clear" {
		return nil, nil
	}
	r, err := ir.ParseResult(s)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
