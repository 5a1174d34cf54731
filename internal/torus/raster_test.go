package torus

import (
	"math"
	"testing"
)

func TestSamplesGrid(t *testing.T) {
	n := 0
	var last Sample
	for s := range Samples() {
		n++
		last = s
	}
	// 63 theta steps x 210 phi steps
	if n != 63*210 {
		t.Fatalf("sample count = %d, want %d", n, 63*210)
	}
	if last.Theta != 6.2 || last.Phi != 6.27 {
		t.Errorf("last sample = %+v, want theta 6.2 phi 6.27", last)
	}
}

func TestDepthBufferHoldsNearestSample(t *testing.T) {
	g := DefaultGeometry()
	r := &Rasterizer{Geometry: g, Palette: Classic{}}

	for _, a := range []float64{0, 0.7, 1.9, 3.3, 12.45, -4} {
		b := a * 0.5
		f := r.Render(Params{AngleA: a, AngleB: b, Intensity: 0.5})

		want := make([]float64, g.Width*g.Height)
		idx := make([]int, g.Width*g.Height)
		rot := NewRotation(a, b)
		for s := range Samples() {
			pt, ok := g.Project(s, rot)
			if !ok {
				continue
			}
			pos, ok := g.Index(pt.X, pt.Y)
			if !ok {
				continue
			}
			// an equal depth keeps the earlier sample's glyph
			if pt.OOZ > want[pos] {
				want[pos] = pt.OOZ
				idx[pos] = GlyphIndex(pt.L)
			}
		}

		for i, c := range f.Cells {
			if c.Depth != want[i] {
				t.Fatalf("a=%v cell %d depth = %v, want %v", a, i, c.Depth, want[i])
			}
			if c.Filled() != (want[i] > 0) {
				t.Fatalf("a=%v cell %d filled = %v, want %v", a, i, c.Filled(), want[i] > 0)
			}
			if c.Filled() && c.Index != idx[i] {
				t.Fatalf("a=%v cell %d glyph index = %d, want %d from the nearest sample", a, i, c.Index, idx[i])
			}
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	a := Rasterize(1.35, 0.675, 0.8)
	b := Rasterize(1.35, 0.675, 0.8)
	if a.String() != b.String() {
		t.Fatal("glyph grids differ between identical renders")
	}
	for i := range a.Cells {
		if a.Cells[i] != b.Cells[i] {
			t.Fatalf("cell %d differs: %+v vs %+v", i, a.Cells[i], b.Cells[i])
		}
	}
}

func TestIndexBounds(t *testing.T) {
	g := DefaultGeometry()
	tests := []struct {
		x, y int
		ok   bool
	}{
		{0, 0, true},
		{g.Width - 1, g.Height - 1, true},
		{g.Width - 1, 0, true},
		{g.Width, 0, false},
		{0, g.Height, false},
		{-1, 5, false},
		{5, -1, false},
	}
	for _, tt := range tests {
		pos, ok := g.Index(tt.x, tt.y)
		if ok != tt.ok {
			t.Errorf("Index(%d,%d) ok = %v, want %v", tt.x, tt.y, ok, tt.ok)
		}
		if ok && pos != tt.x+g.Width*tt.y {
			t.Errorf("Index(%d,%d) = %d", tt.x, tt.y, pos)
		}
	}
}

func TestFrontFaceAtRest(t *testing.T) {
	f := Rasterize(0, 0, 0.5)
	if f.Filled() == 0 {
		t.Fatal("empty frame at zero rotation")
	}
	cx, cy := f.Width/2, f.Height/2
	found := false
	for y := cy - 3; y <= cy+3; y++ {
		for x := cx - 3; x <= cx+3; x++ {
			if f.At(x, y).Filled() {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("no glyph near the centre:\n%s", f)
	}
}

func TestGlyphIndexClamped(t *testing.T) {
	tests := []struct {
		l    float64
		want int
	}{
		{-math.Sqrt2, 0},
		{-0.01, 0},
		{0, 0},
		{0.125, 1},
		{1, 8},
		{math.Sqrt2, 11},
		{3, 11},
	}
	for _, tt := range tests {
		if got := GlyphIndex(tt.l); got != tt.want {
			t.Errorf("GlyphIndex(%v) = %d, want %d", tt.l, got, tt.want)
		}
	}
}

func TestGlyphsMatchIndex(t *testing.T) {
	f := Rasterize(2.1, 1.05, 0.5)
	for i, c := range f.Cells {
		if !c.Filled() {
			if c.Index != -1 || c.Depth != 0 {
				t.Fatalf("blank cell %d carries data: %+v", i, c)
			}
			continue
		}
		if Ramp[c.Index] != c.Glyph {
			t.Fatalf("cell %d glyph %q does not match index %d", i, c.Glyph, c.Index)
		}
	}
}

func TestLuminanceRange(t *testing.T) {
	rot := NewRotation(0.9, 2.3)
	for s := range Samples() {
		l := Luminance(s, rot)
		if l < -math.Sqrt2-1e-9 || l > math.Sqrt2+1e-9 {
			t.Fatalf("luminance %v out of range at %+v", l, s)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultGeometry().Validate(); err != nil {
		t.Fatalf("default geometry: %v", err)
	}
	bad := []Geometry{
		{R1: 1, R2: 2, K2: 3, Width: 80, Height: 60},
		{R1: 1, R2: 2, K2: 5, Width: 0, Height: 60},
		{R1: 0, R2: 2, K2: 5, Width: 80, Height: 60},
	}
	for _, g := range bad {
		if err := g.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", g)
		}
	}
}

func TestViewerInsideTorusDropsSamples(t *testing.T) {
	g := Geometry{R1: 1, R2: 2, K2: 2, Width: 40, Height: 30}
	r := &Rasterizer{Geometry: g}
	f := r.Render(Params{})
	for _, c := range f.Cells {
		if c.Depth < 0 || math.IsInf(c.Depth, 0) || math.IsNaN(c.Depth) {
			t.Fatalf("bad depth %v", c.Depth)
		}
	}
}

func TestLinesShape(t *testing.T) {
	g := Geometry{R1: 1, R2: 2, K2: 5, Width: 32, Height: 12}
	f := (&Rasterizer{Geometry: g}).Render(Params{AngleA: 1})
	lines := f.Lines()
	if len(lines) != 12 {
		t.Fatalf("got %d lines", len(lines))
	}
	for _, l := range lines {
		if len(l) != 32 {
			t.Fatalf("line width %d", len(l))
		}
	}
}
