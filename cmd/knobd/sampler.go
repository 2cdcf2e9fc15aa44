package main

import (
	"context"
	"log/slog"
	"time"

	"knobd/encoder"
)

// ============================================================================
// Sampler - encoder polling and event framing
// ============================================================================
//
// Two cadences drive the encoder:
//
//   - the sample tick (fast, default 1 kHz) polls the latch through the
//     decoder's own rate limiter, so the debounce histories advance at a
//     steady millisecond pace;
//   - the frame tick (slow, default 50 Hz) reads the latched step and
//     click, emits events, and drains the latch exactly once.
//
// The latch guarantees nothing is lost between frames; the spin tracker
// restores fast-rotation feel by weighting turns instead of summing them.
// ============================================================================

type Sampler struct {
	latch  *encoder.Latch
	spin   *spinState
	events chan<- KnobEvent
	logger *slog.Logger

	sampleHz int
	frameHz  int
	spinCfg  SpinConfig

	// Origin of the wrapping millisecond clock fed to the decoder.
	epoch time.Time

	lastButton bool
}

func NewSampler(latch *encoder.Latch, events chan<- KnobEvent, cfg Config, logger *slog.Logger) *Sampler {
	return &Sampler{
		latch:    latch,
		spin:     newSpinState(),
		events:   events,
		logger:   logger,
		sampleHz: cfg.Sampling.SampleHz,
		frameHz:  cfg.Sampling.FrameHz,
		spinCfg:  cfg.Spin,
		epoch:    time.Now(),
	}
}

// millis returns the wrapping millisecond counter the decoder's rate
// limiter compares against. Truncation to uint32 is deliberate; the
// decoder's deadline comparison is modular.
func (s *Sampler) millis() uint32 {
	return uint32(time.Since(s.epoch).Milliseconds())
}

// sample advances the encoder by one poll through the rate limiter.
func (s *Sampler) sample() {
	s.latch.TimedPoll(s.millis())
}

// frame reads the latched events, emits them, and re-arms the latch.
// Called once per frame tick; this is the single Drain site.
func (s *Sampler) frame() {
	step := s.latch.PendingStep()
	click := s.latch.PendingClick()
	level := s.latch.ImmediateButton()
	s.latch.Drain()

	if step != 0 {
		weight := 1.0
		if n := s.spin.addDetent(step, s.spinCfg.WindowMS); n >= s.spinCfg.Threshold {
			weight = s.spinCfg.Multiplier
		}
		s.emit(KnobTurn{Direction: step, Weight: weight})
	}
	if click {
		s.emit(KnobPress{})
	}
	if level != s.lastButton {
		s.lastButton = level
		s.emit(ButtonLevel{Pressed: level})
	}
}

// emit hands an event to the consumer without ever blocking the sampling
// loop. A full channel drops the event and logs; the encoder must keep
// being sampled regardless of consumer speed.
func (s *Sampler) emit(e KnobEvent) {
	select {
	case s.events <- e:
	default:
		s.logger.Warn("event channel full, dropping event", "event", e)
	}
}

// Run drives the two tickers until ctx is canceled.
func (s *Sampler) Run(ctx context.Context) error {
	sampleTicker := time.NewTicker(time.Second / time.Duration(s.sampleHz))
	defer sampleTicker.Stop()
	frameTicker := time.NewTicker(time.Second / time.Duration(s.frameHz))
	defer frameTicker.Stop()

	s.logger.Info("sampler starting", "sample_hz", s.sampleHz, "frame_hz", s.frameHz)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sampler stopping (context canceled)")
			return ctx.Err()

		case <-sampleTicker.C:
			s.sample()

		case <-frameTicker.C:
			s.frame()
		}
	}
}
