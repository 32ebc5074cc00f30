package engine

import (
	"time"
)

// Engine supplies the nondeterministic inputs the tournament reducers need:
// identifiers, shuffle randomness and wall-clock time. Every reducer is a pure
// function of its arguments plus these sources, so an Engine built with a
// fixed seed, a deterministic ID generator and a fixed clock replays exactly.
//
// Thread-safety: an Engine is NOT safe for concurrent use when its Shuffler
// is a *rand.Rand. The state container serializes all calls.
type Engine struct {
	ids  IDGenerator
	rand Shuffler
	now  func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDs sets the identifier source. Default: UUIDv7Generator.
func WithIDs(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithShuffler sets the randomness used to shuffle pairings.
// Default: the process-wide math/rand/v2 source.
func WithShuffler(s Shuffler) Option {
	return func(e *Engine) {
		e.rand = s
	}
}

// WithSeed makes pairing shuffles reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rand = NewSeededRand(seed)
	}
}

// WithNow sets the wall-clock source stamped on new tournaments.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine. Without options it uses UUIDv7 identifiers, the
// global random source and time.Now.
func New(opts ...Option) *Engine {
	e := &Engine{
		ids:  UUIDv7Generator{},
		rand: globalRand{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewID mints an identifier from the configured generator.
func (e *Engine) NewID() string {
	return e.ids.Generate()
}

// Now returns the configured wall-clock time in UTC.
func (e *Engine) Now() time.Time {
	return e.now().UTC()
}
