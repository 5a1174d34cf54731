package torus

import (
	"math"
	"strings"
)

// Ramp orders the glyphs from sparsest to densest.
const Ramp = ".,-~:;=!*#$@"

// Blank marks a cell no sample reached.
const Blank = ' '

// GlyphIndex quantizes luminance onto Ramp. 8*sqrt(2) is about 11.3, so the
// clamp only matters for the negative half.
func GlyphIndex(l float64) int {
	return Clamp(int(math.Floor(l*8)), 0, len(Ramp)-1)
}

// Cell is one grid position of a rendered frame.
type Cell struct {
	Glyph byte
	Index int     // position of Glyph in Ramp, -1 when blank
	Depth float64 // 1/z of the nearest sample, 0 when blank
	Color RGB
}

// Filled reports whether any sample landed in the cell.
func (c Cell) Filled() bool { return c.Glyph != Blank }

// Frame is the output of one rasterization.
type Frame struct {
	Width  int
	Height int
	AngleA float64
	AngleB float64
	Cells  []Cell // row-major
}

// At returns the cell at column col, row row.
func (f *Frame) At(col, row int) Cell {
	return f.Cells[col+f.Width*row]
}

// Filled counts the non-blank cells.
func (f *Frame) Filled() int {
	n := 0
	for _, c := range f.Cells {
		if c.Filled() {
			n++
		}
	}
	return n
}

// Lines renders the glyph grid one string per row.
func (f *Frame) Lines() []string {
	lines := make([]string, f.Height)
	row := make([]byte, f.Width)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			row[x] = f.Cells[x+f.Width*y].Glyph
		}
		lines[y] = string(row)
	}
	return lines
}

func (f *Frame) String() string {
	return strings.Join(f.Lines(), "\n")
}

// Params are the per-frame inputs.
type Params struct {
	AngleA    float64
	AngleB    float64
	Intensity float64 // nominally [0,1]; larger values are not rejected
	Hue       float64 // accumulated hue in [0,1], read by Spectrum only
}

// Rasterizer renders frames for a fixed geometry and palette.
type Rasterizer struct {
	Geometry Geometry
	Palette  Palette
}

// NewRasterizer returns a rasterizer with the default geometry and the classic palette.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{Geometry: DefaultGeometry(), Palette: Classic{}}
}

// Rasterize renders one frame with the default geometry and classic palette.
func Rasterize(angleA, angleB, intensity float64) *Frame {
	return NewRasterizer().Render(Params{AngleA: angleA, AngleB: angleB, Intensity: intensity})
}

// Render samples the torus, keeps the nearest sample per cell and colours
// every filled cell. Buffers are allocated per call and never shared.
func (r *Rasterizer) Render(p Params) *Frame {
	g := r.Geometry
	size := g.Width * g.Height
	glyphs := make([]int, size)
	zbuf := make([]float64, size)
	for i := range glyphs {
		glyphs[i] = -1
	}

	rot := NewRotation(p.AngleA, p.AngleB)
	for s := range Samples() {
		pt, ok := g.Project(s, rot)
		if !ok {
			continue
		}
		pos, ok := g.Index(pt.X, pt.Y)
		if !ok {
			continue
		}
		// strict: an equal depth never replaces the earlier sample
		if pt.OOZ > zbuf[pos] {
			zbuf[pos] = pt.OOZ
			glyphs[pos] = GlyphIndex(pt.L)
		}
	}

	palette := r.Palette
	if palette == nil {
		palette = Classic{}
	}

	f := &Frame{
		Width:  g.Width,
		Height: g.Height,
		AngleA: p.AngleA,
		AngleB: p.AngleB,
		Cells:  make([]Cell, size),
	}
	for i, idx := range glyphs {
		if idx < 0 {
			f.Cells[i] = Cell{Glyph: Blank, Index: -1}
			continue
		}
		f.Cells[i] = Cell{
			Glyph: Ramp[idx],
			Index: idx,
			Depth: zbuf[i],
			Color: palette.Color(Shade{Index: idx, AngleA: p.AngleA, Intensity: p.Intensity, Hue: p.Hue}),
		}
	}
	return f
}
