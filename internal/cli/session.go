package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
	"github.com/roach88/tiebreak/internal/state"
	"github.com/roach88/tiebreak/internal/store"
)

// session is one command's view of the database: the saved tournaments
// loaded into a container that journals every operation.
type session struct {
	store     *store.Store
	snapshots *store.Snapshots
	container *state.Container
	loadedRev int64
}

// openSession opens the database and loads the saved document.
// Callers must call close, and save after mutating.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	if opts.DB == "" {
		return nil, NewExitError(ExitCommandError, "--db must not be empty")
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, storageError("failed to open database", err)
	}

	snapshots := st.Snapshots(opts.StorageKey, time.Now)
	tournaments, err := snapshots.Load(ctx)
	if err != nil {
		st.Close()
		return nil, storageError("failed to load tournaments", err)
	}
	rev, err := st.LastRevision(ctx)
	if err != nil {
		st.Close()
		return nil, storageError("failed to read journal", err)
	}

	var engineOpts []engine.Option
	if opts.Seed != nil {
		engineOpts = append(engineOpts, engine.WithSeed(*opts.Seed))
	}

	c := state.New(
		state.WithEngine(engine.New(engineOpts...)),
		state.WithTournaments(tournaments),
		state.WithRevision(rev),
		state.WithJournal(st),
		state.WithLogger(opts.Logger),
	)
	opts.Logger.Debug("session opened", "db", opts.DB, "tournaments", len(tournaments), "revision", rev)

	return &session{store: st, snapshots: snapshots, container: c, loadedRev: rev}, nil
}

// save writes the tournament list back if any operation was applied.
func (s *session) save(ctx context.Context) error {
	if s.container.Revision() == s.loadedRev {
		return nil
	}
	if err := s.snapshots.Save(ctx, s.container.Tournaments()); err != nil {
		return storageError("failed to save tournaments", err)
	}
	s.loadedRev = s.container.Revision()
	return nil
}

func (s *session) close() error {
	return s.store.Close()
}

// tournament resolves ref as a tournament ID or, failing that, a unique
// tournament name.
func (s *session) tournament(ref string) (ir.Tournament, error) {
	if t, ok := s.container.Tournament(ref); ok {
		return t, nil
	}
	var found []ir.Tournament
	name := engine.NormalizeName(ref)
	for _, t := range s.container.Tournaments() {
		if t.Name == name {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return ir.Tournament{}, notFoundError(fmt.Sprintf("no tournament %q", ref))
	case 1:
		return found[0], nil
	default:
		return ir.Tournament{}, notFoundError(fmt.Sprintf("%d tournaments are named %q, use the ID", len(found), ref))
	}
}

// findPlayer resolves ref as a player ID or name.
func findPlayer(t ir.Tournament, ref string) (ir.Player, error) {
	if p, ok := t.Player(ref); ok {
		return p, nil
	}
	name := engine.NormalizeName(ref)
	for _, p := range t.Players {
		if p.Name == name {
			return p, nil
		}
	}
	return ir.Player{}, notFoundError(fmt.Sprintf("no player %q in %s", ref, t.Name))
}

// findMatch resolves ref as a match ID anywhere in the tournament, or as a
// 1-based table number in round (the viewed round when round is 0).
func findMatch(t ir.Tournament, round int, ref string) (ir.Round, ir.Match, error) {
	for _, r := range t.Rounds {
		for _, m := range r.Matches {
			if m.ID == ref {
				return r, m, nil
			}
		}
	}

	table, err := strconv.Atoi(ref)
	if err != nil {
		return ir.Round{}, ir.Match{}, notFoundError(fmt.Sprintf("no match %q", ref))
	}

	var r ir.Round
	if round == 0 {
		idx, ok := t.ViewedRoundIndex()
		if !ok {
			return ir.Round{}, ir.Match{}, notFoundError(fmt.Sprintf("%s has no rounds", t.Name))
		}
		r = t.Rounds[idx]
	} else {
		if round < 1 || round > len(t.Rounds) {
			return ir.Round{}, ir.Match{}, notFoundError(fmt.Sprintf("no round %d in %s", round, t.Name))
		}
		r = t.Rounds[round-1]
	}

	if table < 1 || table > len(r.Matches) {
		return ir.Round{}, ir.Match{}, notFoundError(fmt.Sprintf("no table %d in round %d", table, r.Number))
	}
	return r, r.Matches[table-1], nil
}

// rejected is returned when the container declines an operation.
func rejected(op string, t ir.Tournament) error {
	return NewExitError(ExitFailure, fmt.Sprintf("%s does not apply to %s (status %s)", op, t.Name, t.Status))
}

func notFoundError(msg string) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: msg, ErrCode: CodeNotFound}
}

func storageError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: msg, Err: err, ErrCode: CodeStorage}
}
