package main

// Sampling cadences
const (
	defaultSampleHz         = 1000 // encoder sampling loop frequency (Hz)
	defaultFrameHz          = 50   // event frame (latch drain) frequency (Hz)
	defaultDecodeIntervalMS = 1    // decoder rate limit (ms)
)

// Spin detection defaults
const (
	defaultSpinWindowMS   = 200 // time window for fast-spin detection (ms)
	defaultSpinThreshold  = 3   // same-direction detents in window to trigger
	defaultSpinMultiplier = 2.0 // step weight once triggered
)

// Server defaults
const (
	defaultListenAddr = "127.0.0.1:3080"
	defaultEventsPath = "/events"
)
