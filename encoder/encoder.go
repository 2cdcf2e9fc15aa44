// Package encoder decodes a quadrature rotary encoder (two phase channels
// plus a push button) into discrete step and click events.
package encoder

import "knobd/debounce"

// DefaultInterval is the decode rate limit in milliseconds. One decode per
// millisecond matches the sampling cadence the debounce history is sized for.
const DefaultInterval uint32 = 1

// upperNibble masks the four most recent samples of a debounce history.
const upperNibble uint8 = 0xF0

// Decoder turns the debounce histories of the two phase channels into a
// signed rotation step, and tracks the push button alongside.
//
// A Decoder is a single-context object: it must only be driven from one
// goroutine at a time. Wrap it in a Latch when a second goroutine needs to
// observe its events.
type Decoder struct {
	a, b, button *debounce.Input

	interval     uint32
	nextDeadline uint32
}

// NewDecoder builds a decoder over three raw lines. now is the current value
// of the caller's wrapping millisecond clock; the first TimedDecode at or
// after now is accepted.
func NewDecoder(a, b, button debounce.Line, now uint32) *Decoder {
	d := &Decoder{
		a:        debounce.NewInput(a),
		b:        debounce.NewInput(b),
		button:   debounce.NewInput(button),
		interval: DefaultInterval,
	}
	d.Reset(now)
	return d
}

// SetInterval overrides the decode rate limit in milliseconds.
func (d *Decoder) SetInterval(ms uint32) {
	if ms == 0 {
		ms = DefaultInterval
	}
	d.interval = ms
}

// Reset re-arms the rate limiter so the next TimedDecode at or after now
// is accepted.
func (d *Decoder) Reset(now uint32) { d.nextDeadline = now }

// Decode samples all three channels once and returns the rotation step:
// +1 when channel A leads with a clean rising edge while B has been quiet
// for its four most recent samples, -1 for the mirrored case, 0 otherwise.
//
// The two step conditions are mutually exclusive: a clean edge on one
// channel requires the other's newest samples to be quiet, so two
// simultaneous clean edges (both histories 0x80) satisfy neither branch
// and decode to 0. Should that ever change, the branch order gives
// channel A priority.
//
// The button channel is sampled on every call so its debounce history keeps
// advancing even when no step is produced; its press flag is read via
// Clicked.
func (d *Decoder) Decode() int {
	a := d.a.Sample()
	b := d.b.Sample()
	d.button.Sample()

	switch {
	case a == debounce.RisingEdge && b&upperNibble == 0:
		return 1
	case b == debounce.RisingEdge && a&upperNibble == 0:
		return -1
	}
	return 0
}

// TimedDecode rate-limits Decode against a wrapping millisecond clock.
// Before the deadline it returns 0 without sampling any channel. The
// comparison is modular, so it stays correct across counter wraparound.
func (d *Decoder) TimedDecode(now uint32) int {
	if int32(now-d.nextDeadline) < 0 {
		return 0
	}
	d.nextDeadline = now + d.interval
	return d.Decode()
}

// Clicked reports whether the button completed a full debounced press since
// the last call. One-shot: reading clears the flag.
func (d *Decoder) Clicked() bool { return d.button.Raised() }

// ImmediateButton returns the live button level, not debounced.
func (d *Decoder) ImmediateButton() bool { return d.button.Immediate() }
