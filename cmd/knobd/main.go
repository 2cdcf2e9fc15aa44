package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"knobd/encoder"
	"knobd/gpio"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("knobd v%s\n", version)
	fmt.Println("Rotary encoder daemon: GPIO quadrature decoding to WebSocket events")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  knobd [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon that samples a quadrature rotary encoder (channel A, channel B")
	fmt.Println("  and a push button) on sysfs GPIO lines, debounces and decodes the")
	fmt.Println("  signals, and broadcasts knob events over a WebSocket endpoint.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML config file (flags override file values)")
	fmt.Println()
	fmt.Println("  -pin-a int")
	fmt.Println("        GPIO line for encoder channel A (default 17)")
	fmt.Println()
	fmt.Println("  -pin-b int")
	fmt.Println("        GPIO line for encoder channel B (default 27)")
	fmt.Println()
	fmt.Println("  -pin-button int")
	fmt.Println("        GPIO line for the push button (default 22)")
	fmt.Println()
	fmt.Println("  -sample-hz int")
	fmt.Printf("        Encoder sampling frequency in Hz (default %d)\n", defaultSampleHz)
	fmt.Println()
	fmt.Println("  -frame-hz int")
	fmt.Printf("        Event frame frequency in Hz (default %d)\n", defaultFrameHz)
	fmt.Println()
	fmt.Println("  -listen string")
	fmt.Printf("        HTTP listen address for the event WebSocket (default %q)\n", defaultListenAddr)
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start with default pins")
	fmt.Println("  knobd")
	fmt.Println()
	fmt.Println("  # Custom wiring and listen address")
	fmt.Println("  knobd -pin-a 5 -pin-b 6 -pin-button 13 -listen 0.0.0.0:3080")
	fmt.Println()
	fmt.Println("  # Config file with debug logging")
	fmt.Println("  knobd -config /etc/knobd.yml -log-level debug")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Requires access to /sys/class/gpio (run as root or via udev group rules)")
	fmt.Println("  - Events are JSON frames: knob_turn, knob_press, button_level")
	fmt.Println()
}

func main() {
	// Check for version/help flags early so they work without valid config.
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		pinA        = flag.Int("pin-a", 17, "GPIO line for encoder channel A")
		pinB        = flag.Int("pin-b", 27, "GPIO line for encoder channel B")
		pinButton   = flag.Int("pin-button", 22, "GPIO line for the push button")
		sampleHz    = flag.Int("sample-hz", defaultSampleHz, "Encoder sampling frequency in Hz")
		frameHz     = flag.Int("frame-hz", defaultFrameHz, "Event frame frequency in Hz")
		listenAddr  = flag.String("listen", defaultListenAddr, "HTTP listen address for the event WebSocket")
		logLevelStr = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		showVersion = flag.Bool("version", false, "Print version and exit")
		showHelp    = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}

	// Config file first, then flag overrides on top. Only flags the user
	// actually set override file values.
	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var overrides FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pin-a":
			overrides.PinA = pinA
		case "pin-b":
			overrides.PinB = pinB
		case "pin-button":
			overrides.PinButton = pinButton
		case "sample-hz":
			overrides.SampleHz = sampleHz
		case "frame-hz":
			overrides.FrameHz = frameHz
		case "listen":
			overrides.ListenAddr = listenAddr
		case "log-level":
			overrides.LogLevel = logLevelStr
		}
	})
	overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logLevel, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger := setupLogger(logLevel)

	// Open the three encoder lines.
	lineA, err := gpio.Open(cfg.Pins.A)
	if err != nil {
		logger.Error("failed to open channel A line", "pin", cfg.Pins.A, "error", err,
			"tip", "run as root or fix /sys/class/gpio permissions")
		os.Exit(1)
	}
	defer lineA.Close()

	lineB, err := gpio.Open(cfg.Pins.B)
	if err != nil {
		logger.Error("failed to open channel B line", "pin", cfg.Pins.B, "error", err)
		os.Exit(1)
	}
	defer lineB.Close()

	lineButton, err := gpio.Open(cfg.Pins.Button)
	if err != nil {
		logger.Error("failed to open button line", "pin", cfg.Pins.Button, "error", err)
		os.Exit(1)
	}
	defer lineButton.Close()

	// Encoder core: decoder + latch, one instance owned here.
	dec := encoder.NewDecoder(lineA, lineB, lineButton, 0)
	dec.SetInterval(uint32(cfg.Sampling.DecodeIntervalMS))
	latch := encoder.NewLatch(dec)

	events := make(chan KnobEvent, 64)
	sampler := NewSampler(latch, events, cfg, logger)
	server := NewServer(logger, HubConfig{})

	mux := http.NewServeMux()
	server.Register(mux, cfg.Server.EventsPath)
	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("listening",
		"pin_a", cfg.Pins.A, "pin_b", cfg.Pins.B, "pin_button", cfg.Pins.Button,
		"sample_hz", cfg.Sampling.SampleHz, "frame_hz", cfg.Sampling.FrameHz,
		"addr", cfg.Server.ListenAddr, "events_path", cfg.Server.EventsPath)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sampler.Run(ctx)
	})
	g.Go(func() error {
		return server.Hub().Run(ctx)
	})
	g.Go(func() error {
		return RunBroadcaster(ctx, server.Hub(), events, logger)
	})
	g.Go(func() error {
		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}
