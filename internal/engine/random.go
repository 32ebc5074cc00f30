package engine

import (
	"math/rand/v2"

	"github.com/roach88/tiebreak/internal/ir"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// pcgStream is mixed into the seed to derive the second PCG word.
const pcgStream = 0x9e3779b97f4a7c15

// NewSeededRand returns a reproducible source for pairing shuffles.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^pcgStream))
}

// globalRand delegates to the process-wide source.
type globalRand struct{}

func (globalRand) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// shufflePlayers returns a uniformly permuted copy of players.
func shufflePlayers(players []ir.Player, r Shuffler) []ir.Player {
	out := make([]ir.Player, len(players))
	copy(out, players)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
