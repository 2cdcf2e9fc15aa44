// Package debounce confirms noisy digital levels by keeping a short shift
// history of raw samples and only trusting edges that show up clean.
package debounce

// HistoryBits is the number of raw samples retained per input.
const HistoryBits = 8

// RisingEdge is the history value of a fully confirmed low-to-high
// transition: the newest sample high, the previous seven low.
const RisingEdge uint8 = 0x80

// Line is a raw digital input. Level returns the instantaneous pin state.
type Line interface {
	Level() bool
}

// LineFunc adapts a plain function to a Line. Handy in tests and for
// sources that are already just closures.
type LineFunc func() bool

func (f LineFunc) Level() bool { return f() }

// Input samples a Line and exposes the recent sample history.
//
// The history is an 8-bit shift register: bit 7 is the most recent sample,
// bit 0 the oldest retained one. Exactly one bit is shifted in per Sample
// call; the oldest bit falls off.
type Input struct {
	line    Line
	history uint8
	raised  bool
}

// NewInput wraps a raw line in a debounced input.
//
// The history is seeded all-high. Seeding it low would let a line that
// idles high at startup hit RisingEdge on its very first sample and
// report a transition that never happened; from all-high the flag cannot
// fire until eight real samples have been taken.
func NewInput(line Line) *Input {
	return &Input{line: line, history: 0xFF}
}

// Sample reads the raw line once and shifts the reading into the history.
// It returns the updated history.
//
// When the shift produces a clean rising edge (history becomes RisingEdge),
// the one-shot raised flag is latched until the next Raised call.
func (in *Input) Sample() uint8 {
	bit := uint8(0)
	if in.line.Level() {
		bit = 1
	}
	in.history = in.history>>1 | bit<<(HistoryBits-1)
	if in.history == RisingEdge {
		in.raised = true
	}
	return in.history
}

// History returns the current sample history without sampling.
func (in *Input) History() uint8 { return in.history }

// Immediate returns the live raw level, bypassing the history entirely.
func (in *Input) Immediate() bool { return in.line.Level() }

// Raised reports whether a full rising transition has been observed since
// the last call. Reading the flag clears it.
func (in *Input) Raised() bool {
	r := in.raised
	in.raised = false
	return r
}
