package encoder

import "sync"

// Latch captures the first step and the first click a Decoder reports and
// holds them until drained, so a polling loop slower than the sampling rate
// never misses an event.
//
// This is a coalescing buffer, not an accumulator: once a field is latched
// it is immutable until Drain, and any further pulses or clicks arriving in
// the meantime are discarded, never summed. The two fields latch and drain
// independently of each other.
//
// All methods are safe for concurrent use; a sampler goroutine may call
// Poll while a consumer goroutine reads and drains.
type Latch struct {
	mu      sync.Mutex
	decoder *Decoder

	pendingStep  int
	pendingClick bool
}

// NewLatch wraps a decoder. The latch takes over driving the decoder; do
// not call the decoder's sampling methods directly afterwards.
func NewLatch(d *Decoder) *Latch {
	return &Latch{decoder: d}
}

// Poll runs one decode and latches its results. A zero step leaves the
// step field armed; repeated polls after a field has latched are no-ops
// for that field.
func (l *Latch) Poll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pendingStep == 0 {
		l.pendingStep = l.decoder.Decode()
	}
	if !l.pendingClick {
		l.pendingClick = l.decoder.Clicked()
	}
}

// TimedPoll is Poll driven through the decoder's rate limiter. Before the
// decode deadline the channels are not sampled at all.
func (l *Latch) TimedPoll(now uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pendingStep == 0 {
		l.pendingStep = l.decoder.TimedDecode(now)
	}
	if !l.pendingClick {
		l.pendingClick = l.decoder.Clicked()
	}
}

// PendingStep returns the latched rotation step: -1, 0 or +1.
func (l *Latch) PendingStep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingStep
}

// PendingClick reports whether a button press has been latched.
func (l *Latch) PendingClick() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingClick
}

// ImmediateButton returns the live button level. Never latched.
func (l *Latch) ImmediateButton() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.decoder.ImmediateButton()
}

// Drain clears both latched fields, re-arming the latch for the next
// frame. Call once per consumer frame after acting on the values.
func (l *Latch) Drain() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pendingStep = 0
	l.pendingClick = false
}
