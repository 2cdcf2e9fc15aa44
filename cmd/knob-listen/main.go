// knob-listen subscribes to a knobd event endpoint and prints the events
// as they arrive. Debugging tool: point it at a running daemon and turn
// the knob.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	var (
		wsURL = flag.String("ws", "ws://127.0.0.1:3080/events", "knobd events websocket URL")
		raw   = flag.Bool("raw", false, "Print raw JSON frames instead of decoded events")
	)
	flag.Parse()

	u, err := url.Parse(*wsURL)
	if err != nil {
		log.Fatalf("invalid websocket URL: %v", err)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	d := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	log.Printf("connecting to %s...", u.String())
	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("connected! (press Ctrl+C to exit)")

	// Mutex to protect concurrent writes to the websocket (pings vs close).
	var writeMu sync.Mutex

	// Ping/pong keepalive so a silent knob doesn't look like a dead link.
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	go func() {
		for range pingTicker.C {
			writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				log.Printf("ping failed: %v", err)
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("websocket error: %v", err)
				}
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			printEvent(message, *raw)
		}
	}()

	select {
	case <-sigc:
		log.Printf("shutting down...")
		writeMu.Lock()
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		writeMu.Unlock()
		if err != nil {
			log.Printf("error closing connection: %v", err)
		}
	case <-done:
		log.Printf("connection closed")
	}
}

// printEvent decodes one envelope and prints a single human line per event.
func printEvent(message []byte, raw bool) {
	if raw {
		fmt.Printf("%s\n", string(message))
		return
	}

	var env struct {
		Type string          `json:"type"`
		Ts   *time.Time      `json:"ts"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(message, &env); err != nil {
		fmt.Printf("[TEXT] %s\n", string(message))
		return
	}

	ts := ""
	if env.Ts != nil {
		ts = env.Ts.Local().Format("15:04:05.000 ")
	}

	switch env.Type {
	case "knob_turn":
		var turn struct {
			Direction int     `json:"direction"`
			Weight    float64 `json:"weight"`
		}
		if err := json.Unmarshal(env.Data, &turn); err != nil {
			fmt.Printf("%s[TURN] %s\n", ts, string(env.Data))
			return
		}
		arrow := "CW"
		if turn.Direction < 0 {
			arrow = "CCW"
		}
		fmt.Printf("%s[TURN] %s x%.1f\n", ts, arrow, turn.Weight)

	case "knob_press":
		fmt.Printf("%s[PRESS]\n", ts)

	case "button_level":
		var lvl struct {
			Pressed bool `json:"pressed"`
		}
		if err := json.Unmarshal(env.Data, &lvl); err == nil && lvl.Pressed {
			fmt.Printf("%s[BUTTON] down\n", ts)
		} else {
			fmt.Printf("%s[BUTTON] up\n", ts)
		}

	default:
		fmt.Printf("%s[%s] %s\n", ts, env.Type, string(env.Data))
	}
}
