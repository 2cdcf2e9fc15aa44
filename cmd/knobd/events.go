package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// Knob Events
// ============================================================================
// Events represent what the encoder did, after debouncing and latching.
// They are produced by the sampler, fanned out on the websocket hub, and
// serialized with a type-discriminator envelope (Go has no union types).
// ============================================================================

// KnobEvent is a marker interface for all emitted events.
type KnobEvent interface {
	knobEventMarker()
}

// KnobTurn is one latched encoder detent. Direction is +1 clockwise, -1
// counter-clockwise. Weight is 1.0 normally and the configured multiplier
// while the knob is being spun fast; consumers scale their response by it.
type KnobTurn struct {
	Direction int     `json:"direction"`
	Weight    float64 `json:"weight"`
}

func (KnobTurn) knobEventMarker() {}

// KnobPress is one latched, fully debounced button press.
type KnobPress struct{}

func (KnobPress) knobEventMarker() {}

// ButtonLevel reports a change of the raw, undebounced button level.
// Emitted on change only; useful for press-and-hold style consumers.
type ButtonLevel struct {
	Pressed bool `json:"pressed"`
}

func (ButtonLevel) knobEventMarker() {}

// ============================================================================
// JSON Encoding/Decoding Support
// ============================================================================

// EventEnvelope wraps an event with a type discriminator for JSON marshaling.
type EventEnvelope struct {
	Type string          `json:"type"`
	Ts   *time.Time      `json:"ts,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalKnobEvent serializes an event into a JSON envelope.
func MarshalKnobEvent(e KnobEvent, at time.Time) ([]byte, error) {
	var env EventEnvelope
	if !at.IsZero() {
		ts := at.UTC()
		env.Ts = &ts
	}

	switch e := e.(type) {
	case KnobTurn:
		env.Type = "knob_turn"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal KnobTurn: %w", err)
		}
		env.Data = data

	case KnobPress:
		env.Type = "knob_press"

	case ButtonLevel:
		env.Type = "button_level"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal ButtonLevel: %w", err)
		}
		env.Data = data

	default:
		return nil, fmt.Errorf("unsupported event type: %T", e)
	}

	return json.Marshal(env)
}

// UnmarshalKnobEvent deserializes a JSON envelope into a concrete event.
func UnmarshalKnobEvent(data []byte) (KnobEvent, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "knob_turn":
		var e KnobTurn
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal KnobTurn: %w", err)
		}
		return e, nil

	case "knob_press":
		return KnobPress{}, nil

	case "button_level":
		var e ButtonLevel
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ButtonLevel: %w", err)
		}
		return e, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}
