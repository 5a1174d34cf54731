package display

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/talgya/torus/internal/engine"
	"github.com/talgya/torus/internal/torus"
)

// Terminal draws frames into a tcell screen. Each logical cell takes two
// columns so the torus keeps its aspect on a typical character grid. Row 0
// and the last row carry the status lines.
type Terminal struct {
	screen tcell.Screen
	eng    *engine.Engine

	mu         sync.Mutex
	played     bool // a frame has been shown since the last reset
	lastFrame  *torus.Frame
	lastStatus engine.Status
}

// NewTerminal binds eng to screen and installs the frame callback.
// The screen must already be initialised.
func NewTerminal(screen tcell.Screen, eng *engine.Engine) *Terminal {
	t := &Terminal{screen: screen, eng: eng}
	eng.OnFrame = t.drawFrame
	return t
}

// Run processes input until ctx ends or the user quits. The caller owns the
// screen and should Fini it afterwards, which also releases the poller.
func (t *Terminal) Run(ctx context.Context) {
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	t.resize()
	t.refresh()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !t.HandleEvent(ev) {
				slog.Info("quit requested")
				return
			}
		}
	}
}

// HandleEvent applies one input event. It returns false on quit.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		cmd := KeyCommand(ev)
		if !Apply(t.eng, cmd) {
			return false
		}
		if cmd == CmdReset {
			t.mu.Lock()
			t.played = false
			t.mu.Unlock()
		}
		t.refresh()

	case *tcell.EventResize:
		t.screen.Sync()
		t.resize()
		t.refresh()
	}
	return true
}

// KeyCommand maps a tcell key event to a command.
func KeyCommand(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyEnter:
		return CmdPlay
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit
	case tcell.KeyUp:
		return CmdRotationUp
	case tcell.KeyDown:
		return CmdRotationDown
	case tcell.KeyRune:
		return RuneCommand(ev.Rune())
	}
	return CmdNone
}

// resize fits the logical grid to the screen.
func (t *Terminal) resize() {
	w, h := t.screen.Size()
	gw, gh := max(w/2, 1), max(h-2, 1)
	t.eng.SetGrid(gw, gh)
	slog.Debug("terminal resized", "cols", w, "rows", h, "grid", fmt.Sprintf("%dx%d", gw, gh))
}

// refresh redraws whatever a non-playing engine should show. While playing
// the next frame does it.
func (t *Terminal) refresh() {
	st := t.eng.Status()

	t.mu.Lock()
	defer t.mu.Unlock()

	switch st.State {
	case engine.Stopped:
		t.drawMessageLocked()
	case engine.Paused:
		if t.lastFrame != nil {
			last := t.lastStatus
			last.State = engine.Paused
			last.Settings = st.Settings
			last.Palette = st.Palette
			t.drawLocked(t.lastFrame, last)
		}
	}
}

// drawFrame checks the engine state under t.mu, so a Stop followed by
// refresh always leaves the stopped screen on top.
func (t *Terminal) drawFrame(f *torus.Frame, st engine.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.eng.Status().State == engine.Stopped {
		return
	}
	t.played = true
	t.lastFrame = f
	t.lastStatus = st
	t.drawLocked(f, st)
}

func (t *Terminal) drawLocked(f *torus.Frame, st engine.Status) {
	t.screen.Clear()
	_, h := t.screen.Size()
	l := Layout{GridW: f.Width, GridH: f.Height, Width: f.Width * 2, Height: f.Height}

	for row := range f.Height {
		for col := range f.Width {
			c := f.At(col, row)
			if !c.Filled() {
				continue
			}
			x, y := l.Origin(col, row)
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.Color.R), int32(c.Color.G), int32(c.Color.B)))
			t.screen.SetContent(int(x), int(y)+1, rune(c.Glyph), nil, style)
		}
	}

	header := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	t.putText(0, 0, FrameLabel(st.Frame), header)

	footer := RotationLabel(st.RotationDegrees)
	footer += fmt.Sprintf("   FPS %d  SPIN %.1fx  INTENSITY %.1f  %s",
		st.Settings.FPS, st.Settings.RotationSpeed, st.Settings.ColorIntensity, st.Palette)
	if st.State == engine.Paused {
		footer += "  [PAUSED]"
	}
	t.putText(0, h-1, footer, tcell.StyleDefault.Foreground(tcell.ColorSilver))
	t.screen.Show()
}

func (t *Terminal) drawMessageLocked() {
	t.screen.Clear()
	w, h := t.screen.Size()
	msg := MsgIdle
	if t.played {
		msg = MsgStopped
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	t.putCentered(w, h/2-1, msg, style)
	t.putCentered(w, h/2+1, MsgPlay, tcell.StyleDefault.Foreground(tcell.ColorSilver))
	t.screen.Show()
}

func (t *Terminal) putCentered(width, y int, s string, style tcell.Style) {
	t.putText(max((width-len([]rune(s)))/2, 0), y, s, style)
}

func (t *Terminal) putText(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}
