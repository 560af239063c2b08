package dashboard

import "sync"

// slotGuard serializes "latest wins" semantics for overlapping fetches
// that target the same UI slot (e.g. the chart for one device). Each fetch
// takes a monotonic sequence number before starting; a fetch whose
// sequence is no longer the newest when it completes must not be applied
// to shared state.
type slotGuard struct {
	mu   sync.Mutex
	seqs map[string]uint64
}

func newSlotGuard() *slotGuard {
	return &slotGuard{seqs: make(map[string]uint64)}
}

// begin registers a new fetch for the slot and returns its sequence.
func (g *slotGuard) begin(slot string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seqs[slot]++
	return g.seqs[slot]
}

// current reports whether seq is still the newest fetch for the slot.
func (g *slotGuard) current(slot string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seqs[slot] == seq
}
