package state

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
)

// Persister saves the whole tournament list. *store.Snapshots implements it.
type Persister interface {
	Save(ctx context.Context, tournaments []ir.Tournament) error
}

// Journal records applied operations. *store.Store implements it.
type Journal interface {
	AppendOperation(ctx context.Context, op ir.Operation) (int64, error)
}

// Event describes one applied operation.
type Event struct {
	Revision     int64
	Op           string
	TournamentID string
	// Tournament is the new snapshot; zero when Removed is set.
	Tournament ir.Tournament
	Removed    bool
}

// Container owns the current tournament list.
//
// Thread-safety: all methods are safe for concurrent use. Subscribers run
// synchronously after each write, in revision order. They may read from the
// container but must not call mutating methods.
type Container struct {
	mu          sync.Mutex
	notifyMu    sync.Mutex
	engine      *engine.Engine
	clock       *engine.Clock
	tournaments []ir.Tournament
	persister   Persister
	journal     Journal
	logger      *slog.Logger
	subs        map[int]func(Event)
	nextSub     int
	pending     []Event
}

// Option configures a Container.
type Option func(*Container)

// WithEngine sets the engine supplying IDs, randomness and time.
func WithEngine(e *engine.Engine) Option {
	return func(c *Container) {
		c.engine = e
	}
}

// WithTournaments seeds the container, typically from a loaded document.
func WithTournaments(ts []ir.Tournament) Option {
	return func(c *Container) {
		c.tournaments = cloneAll(ts)
	}
}

// WithRevision resumes the revision counter after start.
func WithRevision(start int64) Option {
	return func(c *Container) {
		c.clock = engine.NewClock(start)
	}
}

// WithPersister saves the tournament list after every applied operation.
func WithPersister(p Persister) Option {
	return func(c *Container) {
		c.persister = p
	}
}

// WithJournal records every applied operation.
func WithJournal(j Journal) Option {
	return func(c *Container) {
		c.journal = j
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		c.logger = l
	}
}

// New creates a Container. Without options it starts empty with a default
// engine and no persistence.
func New(opts ...Option) *Container {
	c := &Container{
		tournaments: []ir.Tournament{},
		clock:       engine.NewClock(0),
		subs:        make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = engine.New()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Revision returns the revision of the latest applied operation.
func (c *Container) Revision() int64 {
	return c.clock.Revision()
}

// Tournaments returns a deep copy of the current list.
func (c *Container) Tournaments() []ir.Tournament {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAll(c.tournaments)
}

// Tournament returns a deep copy of one tournament.
func (c *Container) Tournament(id string) (ir.Tournament, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.tournaments[i].Clone(), true
	}
	return ir.Tournament{}, false
}

// Subscribe registers fn for every applied operation and returns a
// function that removes it.
func (c *Container) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Container) indexOf(id string) int {
	return slices.IndexFunc(c.tournaments, func(t ir.Tournament) bool {
		return t.ID == id
	})
}

// update runs fn against one tournament and commits the result if fn
// reports a change.
func (c *Container) update(ctx context.Context, op, id string, args map[string]any, fn func(ir.Tournament) (ir.Tournament, bool)) bool {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		c.logger.Debug("operation ignored", "op", op, "tournament_id", id, "reason", "unknown tournament")
		return false
	}
	next, applied := fn(c.tournaments[i])
	if !applied {
		c.mu.Unlock()
		c.logger.Debug("operation ignored", "op", op, "tournament_id", id)
		return false
	}
	list := slices.Clone(c.tournaments)
	list[i] = next
	c.commit(ctx, op, id, args, list, Event{TournamentID: id, Tournament: next.Clone()})
	return true
}

// commit swaps in list, journals, persists and notifies. Called with
// c.mu held; releases it.
func (c *Container) commit(ctx context.Context, op, id string, args map[string]any, list []ir.Tournament, ev Event) {
	c.tournaments = list
	rev := c.clock.Tick()
	ev.Revision = rev
	ev.Op = op

	if args == nil {
		args = map[string]any{}
	}
	args["tournament_id"] = id
	c.record(ctx, rev, op, id, args, ev)
	if c.persister != nil {
		if err := c.persister.Save(ctx, cloneAll(list)); err != nil {
			c.logger.Warn("persist failed", "op", op, "revision", rev, "error", err)
		}
	}

	c.logger.Debug("operation applied", "op", op, "tournament_id", id, "revision", rev)
	c.pending = append(c.pending, ev)
	c.mu.Unlock()
	c.drain()
}

// drain delivers queued events in revision order. Whoever takes notifyMu
// first delivers everything queued so far.
func (c *Container) drain() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	events := c.pending
	c.pending = nil
	c.mu.Unlock()

	keys := make([]int, 0, len(c.subs))
	for k := range c.subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, ev := range events {
		for _, k := range keys {
			c.subs[k](ev)
		}
	}
}

func (c *Container) record(ctx context.Context, rev int64, op, id string, args map[string]any, ev Event) {
	if c.journal == nil {
		return
	}
	digest, err := ir.OperationDigest(op, args)
	if err != nil {
		c.logger.Warn("journal digest failed", "op", op, "error", err)
		return
	}
	var stateDigest string
	if !ev.Removed {
		if stateDigest, err = ir.TournamentDigest(ev.Tournament); err != nil {
			c.logger.Warn("journal digest failed", "op", op, "error", err)
			return
		}
	}
	_, err = c.journal.AppendOperation(ctx, ir.Operation{
		Revision:     rev,
		TournamentID: id,
		Op:           op,
		Args:         args,
		Digest:       digest,
		StateDigest:  stateDigest,
		AppliedAt:    c.engine.Now(),
	})
	if err != nil {
		c.logger.Warn("journal append failed", "op", op, "revision", rev, "error", err)
	}
}

func cloneAll(ts []ir.Tournament) []ir.Tournament {
	out := make([]ir.Tournament, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}
