package app

import (
	"fmt"
	"sync"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

// History keeps the most recent samples in a fixed-size ring. It is safe for
// concurrent use.
type History struct {
	mu    sync.Mutex
	buf   []signal.Sample
	start int
	size  int
}

// NewHistory creates a history holding up to capacity samples
func NewHistory(capacity int) (*History, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid history capacity: %d", capacity)
	}
	return &History{buf: make([]signal.Sample, capacity)}, nil
}

// Add appends s, evicting the oldest sample when full
func (h *History) Add(s signal.Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = s
		h.size++
		return
	}

	h.buf[h.start] = s
	h.start = (h.start + 1) % len(h.buf)
}

// Snapshot returns a copy of the samples, oldest first
func (h *History) Snapshot() []signal.Sample {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]signal.Sample, h.size)
	for i := range h.size {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of samples held
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// Clear removes all samples
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.start, h.size = 0, 0
}
