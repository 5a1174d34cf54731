package display

import (
	"github.com/talgya/torus/internal/engine"
	"github.com/talgya/torus/internal/torus"
)

// Command is a user action bound to a key.
type Command int

const (
	CmdNone Command = iota
	CmdPlay
	CmdTogglePause
	CmdStop
	CmdReset
	CmdFPSUp
	CmdFPSDown
	CmdRotationUp
	CmdRotationDown
	CmdIntensityUp
	CmdIntensityDown
	CmdNextPalette
	CmdQuit
)

// Step sizes for the adjustment keys.
const (
	FPSStep       = 5
	RotationStep  = 0.1
	IntensityStep = 0.1
)

// RuneCommand maps a printable key to its command.
func RuneCommand(r rune) Command {
	switch r {
	case 'p', 'P':
		return CmdPlay
	case ' ':
		return CmdTogglePause
	case 's', 'S':
		return CmdStop
	case 'r', 'R':
		return CmdReset
	case '+', '=':
		return CmdFPSUp
	case '-', '_':
		return CmdFPSDown
	case ']':
		return CmdIntensityUp
	case '[':
		return CmdIntensityDown
	case 'c', 'C':
		return CmdNextPalette
	case 'q', 'Q':
		return CmdQuit
	}
	return CmdNone
}

// Apply performs cmd against eng. It returns false when the user asked to quit.
func Apply(eng *engine.Engine, cmd Command) bool {
	switch cmd {
	case CmdPlay:
		switch eng.Status().State {
		case engine.Stopped:
			eng.Start()
		case engine.Paused:
			eng.Resume()
		}
	case CmdTogglePause:
		eng.TogglePause()
	case CmdStop:
		eng.Stop()
	case CmdReset:
		eng.Reset()
	case CmdFPSUp, CmdFPSDown, CmdRotationUp, CmdRotationDown, CmdIntensityUp, CmdIntensityDown:
		eng.Update(adjust(eng.Settings(), cmd))
	case CmdNextPalette:
		eng.SetPalette(nextPalette(eng.Status().Palette))
	case CmdQuit:
		return false
	}
	return true
}

func adjust(s engine.Settings, cmd Command) engine.Settings {
	switch cmd {
	case CmdFPSUp:
		s.FPS += FPSStep
	case CmdFPSDown:
		s.FPS -= FPSStep
	case CmdRotationUp:
		s.RotationSpeed += RotationStep
	case CmdRotationDown:
		s.RotationSpeed -= RotationStep
	case CmdIntensityUp:
		s.ColorIntensity = torus.Clamp(s.ColorIntensity+IntensityStep, 0, 1)
	case CmdIntensityDown:
		s.ColorIntensity = torus.Clamp(s.ColorIntensity-IntensityStep, 0, 1)
	}
	return s
}

func nextPalette(current string) torus.Palette {
	for i, p := range torus.Palettes {
		if p.Name() == current {
			return torus.Palettes[(i+1)%len(torus.Palettes)]
		}
	}
	return torus.Palettes[0]
}
