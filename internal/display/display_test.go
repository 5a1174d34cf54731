package display

import (
	"bytes"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/talgya/torus/internal/engine"
	"github.com/talgya/torus/internal/torus"
)

// MockScreen records drawn runes and embeds tcell.Screen for everything else.
type MockScreen struct {
	tcell.Screen
	width, height int

	mu    sync.Mutex
	cells map[[2]int]rune
	shows int
}

func newMockScreen(w, h int) *MockScreen {
	return &MockScreen{width: w, height: h, cells: map[[2]int]rune{}}
}

func (m *MockScreen) Size() (int, int) { return m.width, m.height }
func (m *MockScreen) Sync()            {}

func (m *MockScreen) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells = map[[2]int]rune{}
}

func (m *MockScreen) Show() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shows++
}

func (m *MockScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[[2]int{x, y}] = mainc
}

func (m *MockScreen) row(y int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sb strings.Builder
	for x := range m.width {
		if r, ok := m.cells[[2]int{x, y}]; ok {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func (m *MockScreen) contains(s string) bool {
	for y := range m.height {
		if strings.Contains(m.row(y), s) {
			return true
		}
	}
	return false
}

func newTestEngine() (*engine.Engine, *engine.ManualScheduler) {
	sched := &engine.ManualScheduler{}
	return engine.New(sched, engine.DefaultSettings()), sched
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestLayoutCenter(t *testing.T) {
	l := Layout{GridW: 80, GridH: 60, Width: 800, Height: 600}
	cases := []struct {
		col, row int
		x, y     float64
	}{
		{0, 0, 5, 5},
		{79, 59, 795, 595},
		{40, 30, 405, 305},
	}
	for _, c := range cases {
		x, y := l.Center(c.col, c.row)
		if x != c.x || y != c.y {
			t.Errorf("Center(%d,%d) = (%v,%v), want (%v,%v)", c.col, c.row, x, y, c.x, c.y)
		}
	}
	if x, y := (Layout{}).Center(1, 1); x != 0 || y != 0 {
		t.Errorf("empty layout center = (%v,%v)", x, y)
	}
}

func TestRuneCommand(t *testing.T) {
	cases := map[rune]Command{
		'p': CmdPlay, ' ': CmdTogglePause, 's': CmdStop, 'r': CmdReset,
		'+': CmdFPSUp, '-': CmdFPSDown, ']': CmdIntensityUp, '[': CmdIntensityDown,
		'c': CmdNextPalette, 'q': CmdQuit, 'x': CmdNone,
	}
	for r, want := range cases {
		if got := RuneCommand(r); got != want {
			t.Errorf("RuneCommand(%q) = %v, want %v", r, got, want)
		}
	}
}

func TestKeyCommand(t *testing.T) {
	cases := []struct {
		ev   *tcell.EventKey
		want Command
	}{
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), CmdPlay},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), CmdQuit},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), CmdRotationUp},
		{tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), CmdRotationDown},
		{key('c'), CmdNextPalette},
	}
	for _, c := range cases {
		if got := KeyCommand(c.ev); got != c.want {
			t.Errorf("KeyCommand(%v) = %v, want %v", c.ev.Name(), got, c.want)
		}
	}
}

func TestApplyPlayback(t *testing.T) {
	eng, _ := newTestEngine()

	Apply(eng, CmdPlay)
	if eng.Status().State != engine.Playing {
		t.Fatalf("state = %v after play", eng.Status().State)
	}
	Apply(eng, CmdTogglePause)
	if eng.Status().State != engine.Paused {
		t.Fatalf("state = %v after toggle", eng.Status().State)
	}
	Apply(eng, CmdPlay)
	if eng.Status().State != engine.Playing {
		t.Fatalf("play should resume, state = %v", eng.Status().State)
	}
	Apply(eng, CmdStop)
	if eng.Status().State != engine.Stopped {
		t.Fatalf("state = %v after stop", eng.Status().State)
	}
	if Apply(eng, CmdQuit) {
		t.Error("quit should return false")
	}
}

func TestApplyAdjustments(t *testing.T) {
	eng, _ := newTestEngine()

	Apply(eng, CmdFPSUp)
	if got := eng.Settings().FPS; got != 35 {
		t.Errorf("fps = %d, want 35", got)
	}
	Apply(eng, CmdRotationDown)
	if got := eng.Settings().RotationSpeed; math.Abs(got-0.9) > 1e-9 {
		t.Errorf("rotation = %v, want 0.9", got)
	}
	for range 10 {
		Apply(eng, CmdIntensityUp)
	}
	if got := eng.Settings().ColorIntensity; got != 1 {
		t.Errorf("intensity = %v, want clamp at 1", got)
	}
	for range 20 {
		Apply(eng, CmdFPSDown)
	}
	if got := eng.Settings().FPS; got != engine.MinFPS {
		t.Errorf("fps = %d, want floor %d", got, engine.MinFPS)
	}
}

func TestApplyPaletteCycles(t *testing.T) {
	eng, _ := newTestEngine()
	seen := []string{eng.Status().Palette}
	for range torus.Palettes {
		Apply(eng, CmdNextPalette)
		seen = append(seen, eng.Status().Palette)
	}
	if seen[0] != "classic" || seen[1] != "spectrum" || seen[len(seen)-1] != seen[0] {
		t.Errorf("palette cycle = %v", seen)
	}
}

func TestTerminalLifecycle(t *testing.T) {
	eng, sched := newTestEngine()
	screen := newMockScreen(80, 24)
	term := NewTerminal(screen, eng)

	term.resize()
	if st := eng.Status(); st.GridWidth != 40 || st.GridHeight != 22 {
		t.Fatalf("grid = %dx%d, want 40x22", st.GridWidth, st.GridHeight)
	}

	term.refresh()
	if !screen.contains(MsgIdle) {
		t.Error("idle screen missing")
	}

	term.HandleEvent(key('p'))
	if got := screen.row(0); got != "3D DONUT - FRAME: 0" {
		t.Errorf("header = %q", got)
	}
	if !strings.HasPrefix(screen.row(23), "ROTATION: 0°") {
		t.Errorf("footer = %q", screen.row(23))
	}

	sched.Fire(3)
	if got := screen.row(0); got != "3D DONUT - FRAME: 3" {
		t.Errorf("header after ticks = %q", got)
	}

	term.HandleEvent(key(' '))
	if !strings.Contains(screen.row(23), "[PAUSED]") {
		t.Errorf("paused footer = %q", screen.row(23))
	}

	term.HandleEvent(key('s'))
	if !screen.contains(MsgStopped) || !screen.contains(MsgPlay) {
		t.Error("stopped screen missing")
	}

	term.HandleEvent(key('r'))
	if !screen.contains(MsgIdle) {
		t.Error("reset should show the idle screen")
	}

	if term.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should quit")
	}
}

func TestTerminalDrawsGlyphs(t *testing.T) {
	eng, _ := newTestEngine()
	screen := newMockScreen(160, 62)
	term := NewTerminal(screen, eng)
	term.resize()
	term.HandleEvent(key('p'))

	f := eng.Latest()
	if f == nil {
		t.Fatal("no frame rendered")
	}
	drawn := 0
	for row := range f.Height {
		line := screen.row(row + 1)
		for col := range f.Width {
			c := f.At(col, row)
			if !c.Filled() {
				continue
			}
			if 2*col >= len(line) || line[2*col] != c.Glyph {
				t.Fatalf("cell (%d,%d) not drawn at column %d", col, row, 2*col)
			}
			drawn++
		}
	}
	if drawn == 0 {
		t.Error("frame had no filled cells")
	}
}

func TestTextWritesStatusLines(t *testing.T) {
	var buf bytes.Buffer
	out := NewText(&buf)
	eng, sched := newTestEngine()
	eng.OnFrame = out.Frame

	eng.Start()
	sched.Fire(1)
	if out.Err() != nil {
		t.Fatal(out.Err())
	}
	text := buf.String()
	if !strings.Contains(text, "3D DONUT - FRAME: 0\n") || !strings.Contains(text, "3D DONUT - FRAME: 1\n") {
		t.Errorf("missing frame labels:\n%s", text)
	}
	if !strings.Contains(text, "ROTATION: 0°") || !strings.Contains(text, "ROTATION: 8°") {
		t.Errorf("missing rotation labels:\n%s", text)
	}
	if !strings.ContainsAny(text, torus.Ramp) {
		t.Error("no glyphs written")
	}
}

func TestLabels(t *testing.T) {
	if got := FrameLabel(1234567); got != "3D DONUT - FRAME: 1234567" {
		t.Errorf("FrameLabel = %q", got)
	}
	if got := RotationLabel(-3); got != "ROTATION: -3°" {
		t.Errorf("RotationLabel = %q", got)
	}
}

func TestLimitStopsAfterFrames(t *testing.T) {
	eng, sched := newTestEngine()
	var seen []uint64
	eng.OnFrame = Limit(3, eng.Stop, func(_ *torus.Frame, st engine.Status) {
		seen = append(seen, st.Frame)
	})

	eng.Start()
	if sched.Fire(10) {
		t.Error("schedule still armed after the limit")
	}
	if len(seen) != 3 || seen[0] != 0 || seen[2] != 2 {
		t.Errorf("frames = %v, want [0 1 2]", seen)
	}
	if st := eng.Status().State; st != engine.Stopped {
		t.Errorf("state = %v, want stopped", st)
	}
}

func TestLimitDropsLateFrames(t *testing.T) {
	stops, forwarded := 0, 0
	cb := Limit(2, func() { stops++ }, func(*torus.Frame, engine.Status) { forwarded++ })
	for i := range uint64(5) {
		cb(nil, engine.Status{Frame: i})
	}
	if forwarded != 2 || stops != 1 {
		t.Errorf("forwarded %d, stops %d; want 2, 1", forwarded, stops)
	}
}

func TestTerminalKeepsStoppedScreen(t *testing.T) {
	eng, sched := newTestEngine()
	screen := newMockScreen(80, 24)
	term := NewTerminal(screen, eng)
	term.resize()

	var stale *torus.Frame
	var staleStatus engine.Status
	eng.OnFrame = func(f *torus.Frame, st engine.Status) {
		stale, staleStatus = f, st
		term.drawFrame(f, st)
	}
	term.HandleEvent(key('p'))
	sched.Fire(2)
	term.HandleEvent(key('s'))

	// a frame rendered before the stop arrives late
	term.drawFrame(stale, staleStatus)
	if !screen.contains(MsgStopped) {
		t.Error("late frame painted over the stopped screen")
	}
	if screen.contains("3D DONUT - FRAME") {
		t.Error("frame header visible while stopped")
	}
}
