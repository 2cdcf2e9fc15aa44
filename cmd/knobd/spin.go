package main

import (
	"sync"
	"time"
)

// spinState tracks recent encoder detents for fast-spin detection.
// This lets the daemon tell "nudging" from "spinning" and scale the weight
// of emitted turns accordingly.
//
// The latch core deliberately drops extra detents between drains; weight
// scaling is how fast rotation keeps feeling fast without the core summing
// pulses.
//
// Thread-safe: the sampler goroutine and tests may call addDetent
// concurrently.
type spinState struct {
	recent []spinDetent
	mu     sync.Mutex
}

// spinDetent records a single encoder detent.
type spinDetent struct {
	at        time.Time
	direction int // +1 clockwise, -1 counter-clockwise
}

func newSpinState() *spinState {
	return &spinState{
		recent: make([]spinDetent, 0, 16),
	}
}

// addDetent records a new detent and returns the count of recent detents
// in the same direction within the window. Detents older than windowMS are
// pruned first, so a zero window always yields 1.
func (s *spinState) addDetent(direction int, windowMS int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Duration(windowMS) * time.Millisecond)

	// Compact in place, dropping everything older than the window.
	kept := s.recent[:0]
	for _, d := range s.recent {
		if d.at.After(cutoff) {
			kept = append(kept, d)
		}
	}

	kept = append(kept, spinDetent{at: now, direction: direction})
	s.recent = kept

	sameDir := 0
	for _, d := range kept {
		if d.direction == direction {
			sameDir++
		}
	}

	return sameDir
}
