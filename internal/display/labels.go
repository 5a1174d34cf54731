package display

import (
	"fmt"
	"strconv"
)

// Messages shown while no animation is running.
const (
	MsgIdle    = "READY TO ANIMATE"
	MsgStopped = "ANIMATION STOPPED"
	MsgPlay    = "PRESS P TO PLAY"
)

// FrameLabel is the top status line.
func FrameLabel(frame uint64) string {
	return "3D DONUT - FRAME: " + strconv.FormatUint(frame, 10)
}

// RotationLabel is the bottom status line.
func RotationLabel(degrees int) string {
	return fmt.Sprintf("ROTATION: %d°", degrees)
}
