// Package session mirrors play/pause/stop intent without running the animation.
// All transitions go through Apply, a pure function of state and intent.
package session

import (
	"fmt"
	"strconv"
)

// Action names accepted by the mirror.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionStop   Action = "stop"
	ActionUpdate Action = "update"
)

// Messages returned verbatim to clients.
const (
	MsgAlreadyRunning = "Game is already running!"
	MsgNotRunning     = "Game is not running!"
	MsgInvalidAction  = "Invalid action"
	MsgPaused         = "⏸️ Game paused"
	MsgResumed        = "▶️ Game resumed"
	MsgStopped        = "🛑 Game stopped"
	MsgStatus         = "Torus Game API is running"
)

// Settings are the values a client asked the session to run with.
type Settings struct {
	FPS           float64 `json:"fps"`
	RotationSpeed float64 `json:"rotation_speed"`
	ColorSpeed    float64 `json:"color_speed"`
}

// DefaultSettings are captured by a start intent that omits a field.
func DefaultSettings() Settings {
	return Settings{FPS: 60, RotationSpeed: 1, ColorSpeed: 1}
}

// State is the whole of the mirrored session.
type State struct {
	Running  bool     `json:"running"`
	Paused   bool     `json:"paused"`
	Settings Settings `json:"settings"`
}

// NewState returns a stopped session with default settings.
func NewState() State {
	return State{Settings: DefaultSettings()}
}

// Intent is a requested transition. Nil or non-positive settings count as absent.
type Intent struct {
	Action        Action   `json:"action"`
	FPS           *float64 `json:"fps,omitempty"`
	RotationSpeed *float64 `json:"rotation_speed,omitempty"`
	ColorSpeed    *float64 `json:"color_speed,omitempty"`
}

// Response is the envelope returned for every intent.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func fail(msg string) Response { return Response{Success: false, Message: msg} }

// Apply computes the session after in and the response to send back.
// Rejected intents return s unchanged.
func Apply(s State, in Intent) (State, Response) {
	switch in.Action {
	case ActionStart:
		if s.Running {
			return s, fail(MsgAlreadyRunning)
		}
		s.Running = true
		s.Paused = false
		s.Settings = in.merge(DefaultSettings())
		return s, Response{Success: true, Message: "🎮 Game started! " + describe(s.Settings)}

	case ActionPause:
		if !s.Running {
			return s, fail(MsgNotRunning)
		}
		s.Paused = true
		return s, Response{Success: true, Message: MsgPaused}

	case ActionResume:
		if !s.Running {
			return s, fail(MsgNotRunning)
		}
		s.Paused = false
		return s, Response{Success: true, Message: MsgResumed}

	case ActionStop:
		s.Running = false
		s.Paused = false
		return s, Response{Success: true, Message: MsgStopped}

	case ActionUpdate:
		if !s.Running {
			return s, fail(MsgNotRunning)
		}
		s.Settings = in.merge(s.Settings)
		return s, Response{Success: true, Message: "⚙️ Settings updated - " + describe(s.Settings)}

	default:
		return s, fail(MsgInvalidAction)
	}
}

// merge overlays the provided settings on base.
func (in Intent) merge(base Settings) Settings {
	pick := func(v *float64, prior float64) float64 {
		if v == nil || *v <= 0 {
			return prior
		}
		return *v
	}
	return Settings{
		FPS:           pick(in.FPS, base.FPS),
		RotationSpeed: pick(in.RotationSpeed, base.RotationSpeed),
		ColorSpeed:    pick(in.ColorSpeed, base.ColorSpeed),
	}
}

func describe(s Settings) string {
	return fmt.Sprintf("FPS: %s, Rotation: %sx, Colors: %sx",
		formatNumber(s.FPS), formatNumber(s.RotationSpeed), formatNumber(s.ColorSpeed))
}

// formatNumber prints 60 as "60" and 1.5 as "1.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
