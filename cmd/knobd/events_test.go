package main

import (
	"testing"
	"time"
)

// TestEventEnvelope_RoundTrip verifies each event type survives the
// envelope codec with its payload intact.
func TestEventEnvelope_RoundTrip(t *testing.T) {
	now := time.Now()

	events := []KnobEvent{
		KnobTurn{Direction: 1, Weight: 1.0},
		KnobTurn{Direction: -1, Weight: 2.0},
		KnobPress{},
		ButtonLevel{Pressed: true},
	}

	for _, want := range events {
		raw, err := MarshalKnobEvent(want, now)
		if err != nil {
			t.Fatalf("marshal %T: %v", want, err)
		}
		got, err := UnmarshalKnobEvent(raw)
		if err != nil {
			t.Fatalf("unmarshal %T: %v", want, err)
		}
		if got != want {
			t.Errorf("round trip %T: got %#v, want %#v", want, got, want)
		}
	}
}

// TestUnmarshalKnobEvent_UnknownType verifies an unknown discriminator is
// rejected, not silently dropped.
func TestUnmarshalKnobEvent_UnknownType(t *testing.T) {
	_, err := UnmarshalKnobEvent([]byte(`{"type":"mystery"}`))
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
