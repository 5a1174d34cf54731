// Command torusctl sends play/pause/stop intents to a running torusd.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/talgya/torus/internal/client"
	"github.com/talgya/torus/internal/session"
)

const usage = "usage: torusctl <start|pause|resume|stop|update|status> [-fps N] [-rotation X] [-color-speed X]"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	action := os.Args[1]

	fs := flag.NewFlagSet("torusctl "+action, flag.ExitOnError)
	fps := fs.Float64("fps", 0, "frames per second")
	rotation := fs.Float64("rotation", 0, "rotation speed multiplier")
	colorSpeed := fs.Float64("color-speed", 0, "colour speed multiplier")
	fs.Parse(os.Args[2:])

	apiURL := envOrDefault("TORUS_API_URL", "http://localhost:8080")
	c := client.New(apiURL, os.Getenv("TORUS_CONTROL_KEY"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if action == "status" {
		st, err := c.State(ctx)
		if err != nil {
			slog.Error("status failed", "api_url", apiURL, "error", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(st, "", "  ")
		fmt.Println(string(out))
		return
	}

	in := session.Intent{
		Action:        session.Action(action),
		FPS:           positive(*fps),
		RotationSpeed: positive(*rotation),
		ColorSpeed:    positive(*colorSpeed),
	}
	resp, err := c.Send(ctx, in)
	if err != nil {
		slog.Error("intent failed", "api_url", apiURL, "action", action, "error", err)
		os.Exit(1)
	}
	fmt.Println(resp.Message)
	if !resp.Success {
		os.Exit(1)
	}
}

// positive returns nil for flags left at zero so they are omitted from the intent.
func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
