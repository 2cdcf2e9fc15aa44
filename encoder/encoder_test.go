package encoder

import (
	"testing"

	"knobd/debounce"
)

// scriptLine replays a fixed sequence of levels, then stays low.
type scriptLine struct {
	levels []bool
	pos    int
}

func (s *scriptLine) Level() bool {
	if s.pos >= len(s.levels) {
		return false
	}
	v := s.levels[s.pos]
	s.pos++
	return v
}

// countLine counts how often it is sampled.
type countLine struct {
	reads int
}

func (c *countLine) Level() bool {
	c.reads++
	return false
}

// bitsLSBFirst expands a target history into the 8 samples that produce
// it: sample k shifts into bit 7 and ages downward, so the oldest sample
// is the target's bit 0.
func bitsLSBFirst(h uint8) []bool {
	levels := make([]bool, 8)
	for i := 0; i < 8; i++ {
		levels[i] = h>>i&1 == 1
	}
	return levels
}

// decodeHistories drives a fresh decoder until channel A holds history a
// and channel B holds history b, and returns the step of that final decode.
func decodeHistories(t *testing.T, a, b uint8) int {
	t.Helper()
	lineA := &scriptLine{levels: bitsLSBFirst(a)}
	lineB := &scriptLine{levels: bitsLSBFirst(b)}
	d := NewDecoder(lineA, lineB, debounce.LineFunc(func() bool { return false }), 0)

	step := 0
	for i := 0; i < 8; i++ {
		step = d.Decode()
	}
	return step
}

// TestDecode_Exhaustive checks the decode rule over every pair of
// histories: +1 iff A shows a clean rising edge while B's four newest
// samples are quiet, -1 for the mirrored case, 0 otherwise.
func TestDecode_Exhaustive(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			want := 0
			switch {
			case uint8(a) == 0x80 && uint8(b)&0xF0 == 0:
				want = 1
			case uint8(b) == 0x80 && uint8(a)&0xF0 == 0:
				want = -1
			}
			if got := decodeHistories(t, uint8(a), uint8(b)); got != want {
				t.Fatalf("decode(a=%#02x, b=%#02x) = %d, want %d", a, b, got, want)
			}
		}
	}
}

// TestDecode_SimultaneousEdges pins the degenerate case: two clean edges
// at once satisfy neither step condition, because each requires the other
// channel's newest samples to be quiet. The result is 0, deterministically.
func TestDecode_SimultaneousEdges(t *testing.T) {
	if got := decodeHistories(t, 0x80, 0x80); got != 0 {
		t.Errorf("decode(0x80, 0x80) = %d, want 0 (conditions are mutually exclusive)", got)
	}
}

// TestDecode_Scenarios covers the canonical sequences: a clean edge on A,
// a clean edge on B, and a saturated no-edge signal.
func TestDecode_Scenarios(t *testing.T) {
	if got := decodeHistories(t, 0x80, 0x00); got != 1 {
		t.Errorf("A rising, B quiet: step=%d, want +1", got)
	}
	if got := decodeHistories(t, 0x00, 0x80); got != -1 {
		t.Errorf("B rising, A quiet: step=%d, want -1", got)
	}
	if got := decodeHistories(t, 0xFF, 0xFF); got != 0 {
		t.Errorf("both channels saturated high: step=%d, want 0", got)
	}
}

// TestDecode_SamplesButtonEveryCall verifies the button channel advances
// even when no step is produced.
func TestDecode_SamplesButtonEveryCall(t *testing.T) {
	button := &countLine{}
	d := NewDecoder(&scriptLine{}, &scriptLine{}, button, 0)

	for i := 0; i < 5; i++ {
		d.Decode()
	}
	if button.reads != 5 {
		t.Errorf("button sampled %d times over 5 decodes, want 5", button.reads)
	}
}

// TestTimedDecode_RateLimit verifies a call before the deadline returns 0
// and touches no channel.
func TestTimedDecode_RateLimit(t *testing.T) {
	a, b, btn := &countLine{}, &countLine{}, &countLine{}
	d := NewDecoder(a, b, btn, 100)

	d.TimedDecode(100) // accepted, deadline moves to 101
	if a.reads != 1 || b.reads != 1 || btn.reads != 1 {
		t.Fatalf("accepted decode should sample each channel once: a=%d b=%d btn=%d",
			a.reads, b.reads, btn.reads)
	}

	if got := d.TimedDecode(100); got != 0 {
		t.Errorf("decode before deadline returned %d, want 0", got)
	}
	if a.reads != 1 || b.reads != 1 || btn.reads != 1 {
		t.Errorf("rejected decode must not sample: a=%d b=%d btn=%d",
			a.reads, b.reads, btn.reads)
	}

	d.TimedDecode(101) // deadline reached
	if a.reads != 2 {
		t.Errorf("decode at deadline should sample again: a=%d, want 2", a.reads)
	}
}

// TestTimedDecode_Wraparound verifies the deadline comparison is modular:
// a deadline set just before the counter wraps must still accept a "now"
// that has wrapped past zero.
func TestTimedDecode_Wraparound(t *testing.T) {
	a := &countLine{}
	d := NewDecoder(a, &countLine{}, &countLine{}, 0)

	d.Reset(0xFFFFFFFF)
	d.TimedDecode(0xFFFFFFFF) // accepted, deadline wraps to 0
	if a.reads != 1 {
		t.Fatalf("decode at pre-wrap instant not accepted: reads=%d", a.reads)
	}

	d.TimedDecode(0) // now == wrapped deadline: accepted
	if a.reads != 2 {
		t.Errorf("decode at wrapped deadline not accepted: reads=%d", a.reads)
	}

	// The naive comparison trap: deadline numerically huge, now small.
	d.Reset(0xFFFFFFF0)
	d.TimedDecode(2)
	if a.reads != 3 {
		t.Errorf("post-wrap now must count as after the deadline: reads=%d, want 3", a.reads)
	}
}

// TestTimedDecode_Interval verifies a configured interval keeps decodes
// apart by that many milliseconds.
func TestTimedDecode_Interval(t *testing.T) {
	a := &countLine{}
	d := NewDecoder(a, &countLine{}, &countLine{}, 0)
	d.SetInterval(5)

	d.TimedDecode(0)
	for now := uint32(1); now < 5; now++ {
		if got := d.TimedDecode(now); got != 0 {
			t.Fatalf("decode at t=%d inside interval returned %d, want 0", now, got)
		}
	}
	if a.reads != 1 {
		t.Fatalf("channel sampled during interval: reads=%d, want 1", a.reads)
	}

	d.TimedDecode(5)
	if a.reads != 2 {
		t.Errorf("decode at interval boundary not accepted: reads=%d, want 2", a.reads)
	}
}
