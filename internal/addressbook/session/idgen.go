package session

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

// IDGenerator produces entry ids of the form
// <candidateID>_<counter>_<random base36>. The counter starts at the current
// unix-nano time and never goes backwards, so ids stay unique within a process
// even when the clock does not advance between calls.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a fresh entry id derived from candidateID.
func (g *IDGenerator) Next(candidateID string) string {
	g.mu.Lock()
	n := g.now().UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	g.mu.Unlock()

	return candidateID + "_" + strconv.FormatInt(n, 10) + "_" + strconv.FormatUint(rand.Uint64(), 36)
}
