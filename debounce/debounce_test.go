package debounce

import "testing"

// levelLine is a settable fake Line.
type levelLine struct {
	level bool
}

func (l *levelLine) Level() bool { return l.level }

// settleLow drains the construction seed with eight low samples so the
// history reads 0x00.
func settleLow(in *Input) {
	for i := 0; i < HistoryBits; i++ {
		in.Sample()
	}
}

// TestInput_ShiftOrder verifies bit 7 holds the newest sample and older
// samples move toward bit 0.
func TestInput_ShiftOrder(t *testing.T) {
	line := &levelLine{}
	in := NewInput(line)
	settleLow(in)

	line.level = true
	if got := in.Sample(); got != 0x80 {
		t.Fatalf("after one high sample: history=%#02x, want 0x80", got)
	}

	line.level = false
	if got := in.Sample(); got != 0x40 {
		t.Fatalf("high sample should age toward bit 0: history=%#02x, want 0x40", got)
	}

	// Seven more low samples push the high bit off the end.
	for i := 0; i < 7; i++ {
		in.Sample()
	}
	if got := in.History(); got != 0x00 {
		t.Errorf("oldest sample not discarded: history=%#02x, want 0x00", got)
	}
}

// TestInput_StartupHighNotRaised verifies a line that is already high when
// the input is constructed does not look like a rising edge. The seeded
// history keeps the flag quiet until eight real samples exist.
func TestInput_StartupHighNotRaised(t *testing.T) {
	line := &levelLine{level: true}
	in := NewInput(line)

	if got := in.Sample(); got == RisingEdge {
		t.Fatalf("first high sample produced history %#02x, must not equal RisingEdge", got)
	}
	for i := 0; i < 2*HistoryBits; i++ {
		in.Sample()
	}
	if in.Raised() {
		t.Error("line idling high since startup must not raise the transition flag")
	}
}

// TestInput_RaisedOneShot verifies the raised flag latches on a clean
// rising edge and clears on read.
func TestInput_RaisedOneShot(t *testing.T) {
	line := &levelLine{}
	in := NewInput(line)

	// Seven stable low samples shift the seed out, then one high sample
	// lands the history on exactly 0x80.
	for i := 0; i < 7; i++ {
		in.Sample()
	}
	line.level = true
	if got := in.Sample(); got != 0x80 {
		t.Fatalf("history=%#02x, want 0x80", got)
	}

	if !in.Raised() {
		t.Fatal("expected raised after clean rising edge")
	}
	if in.Raised() {
		t.Error("raised flag should clear on read")
	}
}

// TestInput_NoisyEdgeNotRaised verifies a bouncing line never produces the
// raised flag, because the history never settles at exactly 0x80.
func TestInput_NoisyEdgeNotRaised(t *testing.T) {
	line := &levelLine{}
	in := NewInput(line)

	// Alternate levels: the history always contains stale high bits.
	for i := 0; i < 16; i++ {
		line.level = i%2 == 0
		in.Sample()
	}
	if in.Raised() {
		t.Error("bouncing input must not raise the transition flag")
	}
}

// TestInput_RaisedSurvivesFurtherSamples verifies the flag stays latched
// across additional samples until it is read.
func TestInput_RaisedSurvivesFurtherSamples(t *testing.T) {
	line := &levelLine{}
	in := NewInput(line)

	for i := 0; i < 7; i++ {
		in.Sample()
	}
	line.level = true
	in.Sample() // 0x80, latches raised

	// Keep sampling high; history moves past 0x80.
	in.Sample()
	in.Sample()

	if !in.Raised() {
		t.Error("raised flag should persist until read")
	}
}

// TestInput_Immediate verifies the live level bypasses the history.
func TestInput_Immediate(t *testing.T) {
	line := &levelLine{}
	in := NewInput(line)

	if in.Immediate() {
		t.Error("expected low immediate level")
	}
	line.level = true
	if !in.Immediate() {
		t.Error("expected high immediate level without any sampling")
	}
	if got := in.History(); got != 0xFF {
		t.Errorf("Immediate must not advance history: got %#02x, want the 0xFF seed", got)
	}
}

// TestLineFunc verifies the function adapter.
func TestLineFunc(t *testing.T) {
	high := LineFunc(func() bool { return true })
	if !high.Level() {
		t.Error("LineFunc adapter lost the level")
	}
}
