package engine

import (
	"encoding/json"
	"log/slog"
	"math"
	"sync"

	"github.com/talgya/torus/internal/torus"
)

// State is the playback state of the driver.
type State uint8

const (
	Stopped State = iota
	Playing
	Paused
)

var stateNames = [...]string{"stopped", "playing", "paused"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Status is a point-in-time view of the driver.
type Status struct {
	State           State    `json:"state"`
	Frame           uint64   `json:"frame"`
	AngleA          float64  `json:"angle_a"`
	AngleB          float64  `json:"angle_b"`
	RotationDegrees int      `json:"rotation_degrees"`
	Hue             float64  `json:"hue"`
	Palette         string   `json:"palette"`
	GridWidth       int      `json:"grid_width"`
	GridHeight      int      `json:"grid_height"`
	Settings        Settings `json:"settings"`
}

// RotationDegrees converts an accumulated angle to whole degrees.
func RotationDegrees(angle float64) int {
	return int(math.Floor(angle * 180 / math.Pi))
}

// Engine drives the rasterizer once per scheduled tick.
//
// angleA only grows; periodicity of the trig functions does the wrapping.
// angleB is always angleA/2.
type Engine struct {
	// OnFrame receives each rendered frame. It runs on the ticking goroutine
	// and the next tick waits for it to return, so it must not call Start
	// synchronously. Stop is allowed and no later frame is rendered.
	OnFrame func(*torus.Frame, Status)

	sched Scheduler

	// render serializes whole ticks, including OnFrame.
	render sync.Mutex

	mu       sync.Mutex
	state    State
	settings Settings
	raster   torus.Rasterizer
	angleA   float64
	hue      float64
	frame    uint64
	epoch    uint64 // bumped by Start/Stop so in-flight ticks can detect staleness
	latest   *torus.Frame
}

// New creates a stopped engine.
func New(sched Scheduler, settings Settings) *Engine {
	return &Engine{
		sched:    sched,
		settings: settings.Normalize(),
		raster:   *torus.NewRasterizer(),
	}
}

// Start resets the counters, arms the schedule and renders the first frame
// immediately.
func (e *Engine) Start() {
	e.mu.Lock()
	e.angleA = 0
	e.hue = 0
	e.frame = 0
	e.latest = nil
	e.state = Playing
	e.epoch++
	interval := e.settings.Interval()
	e.mu.Unlock()

	slog.Info("animation started", "interval", interval)
	e.sched.Start(interval, e.tick)
	e.tick()
}

// Pause keeps the schedule armed but makes ticks skip rendering.
func (e *Engine) Pause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Playing {
		return false
	}
	e.state = Paused
	slog.Info("animation paused", "frame", e.frame)
	return true
}

// Resume continues a paused animation from where it left off.
func (e *Engine) Resume() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Paused {
		return false
	}
	e.state = Playing
	slog.Info("animation resumed", "frame", e.frame)
	return true
}

// TogglePause flips between playing and paused. It does nothing when stopped.
func (e *Engine) TogglePause() {
	if !e.Pause() {
		e.Resume()
	}
}

// Stop clears the schedule and zeroes the frame counter and angle.
func (e *Engine) Stop() {
	e.sched.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Stopped
	e.angleA = 0
	e.hue = 0
	e.frame = 0
	e.latest = nil
	e.epoch++
	slog.Info("animation stopped")
}

// Reset stops the animation and restores default settings.
func (e *Engine) Reset() {
	e.Stop()
	e.mu.Lock()
	e.settings = DefaultSettings()
	e.mu.Unlock()
}

// Update replaces the settings. A running schedule is re-armed with the new
// interval rather than a second schedule being started.
func (e *Engine) Update(s Settings) Settings {
	s = s.Normalize()

	e.mu.Lock()
	prev := e.settings.Interval()
	e.settings = s
	active := e.state != Stopped
	e.mu.Unlock()

	if active && s.Interval() != prev {
		e.sched.Reset(s.Interval())
	}
	return s
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SetPalette changes the colouring applied to subsequent frames.
func (e *Engine) SetPalette(p torus.Palette) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.raster.Palette = p
}

// SetGrid resizes the logical grid for subsequent frames.
func (e *Engine) SetGrid(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.raster.Geometry.Width = width
	e.raster.Geometry.Height = height
}

// Status returns a snapshot of the driver state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

func (e *Engine) statusLocked() Status {
	palette := "classic"
	if e.raster.Palette != nil {
		palette = e.raster.Palette.Name()
	}
	return Status{
		State:           e.state,
		Frame:           e.frame,
		AngleA:          e.angleA,
		AngleB:          e.angleA * 0.5,
		RotationDegrees: RotationDegrees(e.angleA),
		Hue:             e.hue,
		Palette:         palette,
		GridWidth:       e.raster.Geometry.Width,
		GridHeight:      e.raster.Geometry.Height,
		Settings:        e.settings,
	}
}

// Latest returns the most recent frame, or nil before the first one.
func (e *Engine) Latest() *torus.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest
}

// tick renders one frame if playing, then advances the angle.
func (e *Engine) tick() {
	e.render.Lock()
	defer e.render.Unlock()

	e.mu.Lock()
	if e.state != Playing {
		e.mu.Unlock()
		return
	}
	epoch := e.epoch
	raster := e.raster
	params := torus.Params{
		AngleA:    e.angleA,
		AngleB:    e.angleA * 0.5,
		Intensity: e.settings.ColorIntensity,
		Hue:       e.hue,
	}
	e.mu.Unlock()

	frame := raster.Render(params)

	e.mu.Lock()
	if e.epoch != epoch || e.state != Playing {
		// stopped or restarted mid-frame
		e.mu.Unlock()
		return
	}
	e.latest = frame
	st := e.statusLocked()
	e.angleA += AngleIncrement * e.settings.RotationSpeed
	e.hue += HueIncrement * e.settings.ColorSpeed
	if e.hue > 1 {
		e.hue = 0
	}
	e.frame++
	onFrame := e.OnFrame
	e.mu.Unlock()

	if onFrame != nil {
		onFrame(frame, st)
	}
}
