// Command torusd renders the spinning ASCII torus and serves the session
// intent mirror over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"

	"github.com/talgya/torus/internal/api"
	"github.com/talgya/torus/internal/config"
	"github.com/talgya/torus/internal/display"
	"github.com/talgya/torus/internal/display/window"
	"github.com/talgya/torus/internal/engine"
	"github.com/talgya/torus/internal/persistence"
	"github.com/talgya/torus/internal/session"
	"github.com/talgya/torus/internal/torus"
)

func main() {
	cfg, err := config.Load(os.Args[1:], nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "torusd: %v\n", err)
		os.Exit(2)
	}

	mode := cfg.Display
	if mode == config.DisplayAuto {
		mode = config.DisplayHeadless
		if isatty.IsTerminal(os.Stdout.Fd()) {
			mode = config.DisplayTerminal
		}
	}

	// ── Logging ───────────────────────────────────────────────────────
	level, _ := config.ParseLevel(cfg.LogLevel)
	logOut, closeLog := logWriter(cfg.LogFile, mode)
	defer closeLog()
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("torusd starting", "display", mode, "grid", cfg.Grid, "palette", cfg.Palette,
		"fps", cfg.Settings.FPS, "rotation", cfg.Settings.RotationSpeed)

	// ── Journal ───────────────────────────────────────────────────────
	var (
		journal session.Journal
		reader  api.Journal
	)
	if cfg.DBPath != "" {
		os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
		db, err := persistence.Open(cfg.DBPath)
		if err != nil {
			slog.Error("failed to open journal", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		journal, reader = db, db
		recordBoot(db)
	} else {
		slog.Info("intent journal disabled")
	}

	// ── Animation ─────────────────────────────────────────────────────
	var sched engine.Scheduler
	manual := &engine.ManualScheduler{}
	if mode == config.DisplayText {
		sched = manual
	} else {
		sched = engine.NewTickScheduler(ctx)
	}
	eng := engine.New(sched, cfg.Settings)

	palette, _ := torus.ParsePalette(cfg.Palette)
	eng.SetPalette(palette)
	gw, gh, _ := cfg.GridSize()
	eng.SetGrid(gw, gh)

	// ── HTTP API ──────────────────────────────────────────────────────
	var srv *api.Server
	if cfg.Port > 0 {
		if cfg.ControlKey == "" {
			slog.Warn("TORUS_CONTROL_KEY not set, intent endpoint is open")
		}
		srv = &api.Server{
			Mirror:      session.NewMirror(journal),
			Eng:         eng,
			Journal:     reader,
			Port:        cfg.Port,
			ControlKey:  cfg.ControlKey,
			CORSOrigins: cfg.CORSOrigins,
		}
		srv.Start()
	}

	// ── Display ───────────────────────────────────────────────────────
	switch mode {
	case config.DisplayText:
		out := display.NewText(os.Stdout)
		eng.OnFrame = out.Frame
		eng.Start()
		if cfg.Frames > 1 {
			manual.Fire(cfg.Frames - 1)
		}
		if err := out.Err(); err != nil {
			slog.Error("writing frames failed", "error", err)
		}

	case config.DisplayTerminal:
		screen, err := tcell.NewScreen()
		if err == nil {
			err = screen.Init()
		}
		if err != nil {
			slog.Error("terminal init failed", "error", err)
			os.Exit(1)
		}
		display.NewTerminal(screen, eng).Run(ctx)
		screen.Fini()

	case config.DisplayWindow:
		if err := window.Run(ctx, eng); err != nil {
			slog.Error("window failed", "error", err)
		}

	case config.DisplayHeadless:
		logFrame := display.LogEvery(uint64(5 * cfg.Settings.FPS))
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		eng.OnFrame = logFrame
		if cfg.Frames > 0 {
			eng.OnFrame = display.Limit(uint64(cfg.Frames), func() {
				eng.Stop()
				cancel()
			}, logFrame)
		}
		eng.Start()
		fmt.Println("Rendering headless... (Ctrl+C to stop)")
		<-runCtx.Done()

	case config.DisplayNone:
		if srv == nil {
			slog.Warn("no display and no API, nothing to do")
			break
		}
		fmt.Printf("API: http://localhost:%d/api/run-torus\n", cfg.Port)
		<-ctx.Done()
	}

	// ── Shutdown ──────────────────────────────────────────────────────
	slog.Info("shutting down", "frames", humanize.Comma(int64(eng.Status().Frame)))
	eng.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP shutdown failed", "error", err)
		}
	}
}

// logWriter picks the log destination. A full-screen terminal owns stdout,
// so without a log file the logs are dropped there. Text mode writes frames
// to stdout and logs to stderr.
func logWriter(path, mode string) (io.Writer, func()) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "torusd: open log file: %v\n", err)
			os.Exit(1)
		}
		return f, func() { f.Close() }
	}
	switch mode {
	case config.DisplayTerminal:
		return io.Discard, func() {}
	case config.DisplayText:
		return os.Stderr, func() {}
	}
	return os.Stdout, func() {}
}

// recordBoot logs when the previous run started and stamps this one.
func recordBoot(db *persistence.DB) {
	if prev, ok, err := db.GetMeta("last_boot"); err != nil {
		slog.Warn("reading last boot failed", "error", err)
	} else if ok {
		if t, err := time.Parse(time.RFC3339, prev); err == nil {
			slog.Info("previous boot", "at", prev, "ago", humanize.Time(t))
		}
	}
	if err := db.SaveMeta("last_boot", time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("saving boot time failed", "error", err)
	}
}
