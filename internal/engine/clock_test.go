package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_TickIsMonotonic(t *testing.T) {
	c := NewClock(0)

	assert.Equal(t, int64(0), c.Revision())
	assert.Equal(t, int64(1), c.Tick())
	assert.Equal(t, int64(2), c.Tick())
	assert.Equal(t, int64(2), c.Revision())
}

func TestClock_ResumesFromStart(t *testing.T) {
	c := NewClock(41)
	assert.Equal(t, int64(42), c.Tick())
}

func TestClock_ConcurrentTicksAreUnique(t *testing.T) {
	c := NewClock(0)

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r := c.Tick()
				mu.Lock()
				seen[r] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 400)
	assert.Equal(t, int64(400), c.Revision())
}
