// Package config resolves torusd settings from the environment and flags.
// Flags override environment variables, which override defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/talgya/torus/internal/engine"
	"github.com/talgya/torus/internal/torus"
)

// Display modes.
const (
	DisplayAuto     = "auto"
	DisplayTerminal = "terminal"
	DisplayWindow   = "window"
	DisplayText     = "text"
	DisplayHeadless = "headless"
	DisplayNone     = "none"
)

var displays = []string{DisplayAuto, DisplayTerminal, DisplayWindow, DisplayText, DisplayHeadless, DisplayNone}

// Config is everything torusd needs to boot.
type Config struct {
	Port        int
	DBPath      string
	ControlKey  string
	CORSOrigins []string
	Display     string
	Palette     string
	Grid        string
	Frames      int
	LogLevel    string
	LogFile     string
	Settings    engine.Settings
}

// Load reads getenv, then parses args on top. A nil getenv uses os.Getenv.
func Load(args []string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	def := engine.DefaultSettings()
	cfg := &Config{}

	fs := flag.NewFlagSet("torusd", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", envInt(getenv, "TORUS_PORT", 8080), "HTTP API port (0 disables the API)")
	fs.StringVar(&cfg.DBPath, "db", env("TORUS_DB", "data/torus.db"), "intent journal path (empty disables the journal)")
	fs.StringVar(&cfg.ControlKey, "control-key", env("TORUS_CONTROL_KEY", ""), "bearer token required for POST intents")
	fs.StringVar(&cfg.Display, "display", env("TORUS_DISPLAY", DisplayAuto), "auto, terminal, window, text, headless or none")
	fs.StringVar(&cfg.Palette, "palette", env("TORUS_PALETTE", "classic"), "glyph palette: classic or spectrum")
	fs.StringVar(&cfg.Grid, "grid", "80x60", "rasterizer grid as WIDTHxHEIGHT")
	fs.IntVar(&cfg.Frames, "frames", 0, "frames to render before exiting (0 runs until interrupted)")
	fs.StringVar(&cfg.LogLevel, "log-level", env("TORUS_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", env("TORUS_LOG_FILE", ""), "append logs to this file instead of the console")
	fs.IntVar(&cfg.Settings.FPS, "fps", envInt(getenv, "TORUS_FPS", def.FPS), "frames per second")
	fs.Float64Var(&cfg.Settings.RotationSpeed, "rotation", envFloat(getenv, "TORUS_ROTATION", def.RotationSpeed), "rotation speed multiplier")
	fs.Float64Var(&cfg.Settings.ColorIntensity, "intensity", envFloat(getenv, "TORUS_INTENSITY", def.ColorIntensity), "colour intensity")
	fs.Float64Var(&cfg.Settings.ColorSpeed, "color-speed", envFloat(getenv, "TORUS_COLOR_SPEED", def.ColorSpeed), "hue drift multiplier")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if origins := getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}
	cfg.Settings = cfg.Settings.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if !slices.Contains(displays, c.Display) {
		errs = append(errs, fmt.Errorf("unknown display %q", c.Display))
	}
	if _, err := torus.ParsePalette(c.Palette); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := c.GridSize(); err != nil {
		errs = append(errs, err)
	}
	if c.Frames < 0 {
		errs = append(errs, fmt.Errorf("frames must not be negative, got %d", c.Frames))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GridSize parses Grid as WIDTHxHEIGHT.
func (c *Config) GridSize() (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(c.Grid), "x")
	if !ok {
		return 0, 0, fmt.Errorf("grid %q: want WIDTHxHEIGHT", c.Grid)
	}
	w, errW := strconv.Atoi(ws)
	h, errH := strconv.Atoi(hs)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("grid %q: want positive WIDTHxHEIGHT", c.Grid)
	}
	return w, h, nil
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

func envInt(getenv func(string) string, key string, def int) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring malformed integer", "env", key, "value", v)
	}
	return def
}

func envFloat(getenv func(string) string, key string, def float64) float64 {
	if v := getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring malformed number", "env", key, "value", v)
	}
	return def
}
