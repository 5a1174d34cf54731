// Package window shows the animation in a desktop window.
package window

import (
	"context"
	"errors"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/talgya/torus/internal/display"
	"github.com/talgya/torus/internal/engine"
	"github.com/talgya/torus/internal/torus"
)

const (
	screenWidth  = 800
	screenHeight = 600
	glyphWidth   = 7
	glyphAscent  = 10
)

var (
	background = color.RGBA{0x0a, 0x0a, 0x12, 0xff}
	labelColor = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	hintColor  = color.RGBA{0x90, 0x90, 0x90, 0xff}
)

// Run opens the window and blocks until it closes, the user quits or ctx ends.
func Run(ctx context.Context, eng *engine.Engine) error {
	g := &game{ctx: ctx, eng: eng}
	eng.OnFrame = g.onFrame

	ebiten.SetWindowTitle("3D Donut")
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type game struct {
	ctx context.Context
	eng *engine.Engine

	mu     sync.Mutex
	played bool
	frame  *torus.Frame
	status engine.Status
}

func (g *game) onFrame(f *torus.Frame, st engine.Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.played = true
	g.frame = f
	g.status = st
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	var cmds []display.Command
	for _, r := range ebiten.AppendInputChars(nil) {
		cmds = append(cmds, display.RuneCommand(r))
	}
	for key, cmd := range map[ebiten.Key]display.Command{
		ebiten.KeyEnter:  display.CmdPlay,
		ebiten.KeyEscape: display.CmdQuit,
		ebiten.KeyUp:     display.CmdRotationUp,
		ebiten.KeyDown:   display.CmdRotationDown,
	} {
		if inpututil.IsKeyJustPressed(key) {
			cmds = append(cmds, cmd)
		}
	}

	for _, cmd := range cmds {
		if !display.Apply(g.eng, cmd) {
			return ebiten.Termination
		}
		switch cmd {
		case display.CmdStop:
			g.mu.Lock()
			g.frame = nil
			g.mu.Unlock()
		case display.CmdReset:
			g.mu.Lock()
			g.frame = nil
			g.played = false
			g.mu.Unlock()
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	state := g.eng.Status().State
	g.mu.Lock()
	f, st, played := g.frame, g.status, g.played
	g.mu.Unlock()

	if state == engine.Stopped || f == nil {
		msg := display.MsgIdle
		if played {
			msg = display.MsgStopped
		}
		drawCentered(screen, msg, screenHeight/2-10, labelColor)
		drawCentered(screen, display.MsgPlay, screenHeight/2+14, hintColor)
		return
	}

	l := display.Layout{GridW: f.Width, GridH: f.Height, Width: screenWidth, Height: screenHeight}
	for row := range f.Height {
		for col := range f.Width {
			c := f.At(col, row)
			if !c.Filled() {
				continue
			}
			x, y := l.Center(col, row)
			clr := color.RGBA{c.Color.R, c.Color.G, c.Color.B, 0xff}
			text.Draw(screen, string(c.Glyph), basicfont.Face7x13, int(x)-glyphWidth/2, int(y)+glyphAscent/2, clr)
		}
	}

	text.Draw(screen, display.FrameLabel(st.Frame), basicfont.Face7x13, 10, 20, labelColor)
	footer := display.RotationLabel(st.RotationDegrees)
	if state == engine.Paused {
		footer += "  [PAUSED]"
	}
	text.Draw(screen, footer, basicfont.Face7x13, 10, screenHeight-10, labelColor)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func drawCentered(screen *ebiten.Image, s string, y int, clr color.Color) {
	x := (screenWidth - len([]rune(s))*glyphWidth) / 2
	text.Draw(screen, s, basicfont.Face7x13, x, y, clr)
}
