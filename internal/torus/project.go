package torus

import "math"

// Rotation caches the sines and cosines of the two driving angles.
type Rotation struct {
	A, B       float64
	sinA, cosA float64
	sinB, cosB float64
}

// NewRotation precomputes the trigonometry for angles a and b.
func NewRotation(a, b float64) Rotation {
	return Rotation{
		A: a, B: b,
		sinA: math.Sin(a), cosA: math.Cos(a),
		sinB: math.Sin(b), cosB: math.Cos(b),
	}
}

// Projected is a sample after rotation and perspective projection.
type Projected struct {
	X, Y int     // grid column and row
	OOZ  float64 // 1/z; larger is nearer
	L    float64 // luminance in [-sqrt(2), sqrt(2)]
}

// Project rotates s, offsets it by the viewer distance and projects it onto
// the grid. It returns false when the point sits at or behind the viewer,
// which only happens if K2 <= R1+R2. Bounds are not checked here.
func (g Geometry) Project(s Sample, rot Rotation) (Projected, bool) {
	sinT, cosT := math.Sincos(s.Theta)
	sinP, cosP := math.Sincos(s.Phi)

	// circle in the cross-section plane, before revolving
	circleX := g.R2 + g.R1*cosT
	circleY := g.R1 * sinT

	x := circleX*(rot.cosB*cosP+rot.sinA*rot.sinB*sinP) - circleY*rot.cosA*rot.sinB
	y := circleX*(rot.sinB*cosP-rot.sinA*rot.cosB*sinP) + circleY*rot.cosA*rot.cosB
	z := g.K2 + rot.cosA*circleX*sinP + circleY*rot.sinA
	if z <= 0 {
		return Projected{}, false
	}
	ooz := 1 / z

	k1 := g.K1()
	// screen rows grow downward, so y is negated
	xp := int(math.Floor(float64(g.Width)/2 + k1*ooz*x))
	yp := int(math.Floor(float64(g.Height)/2 - k1*ooz*y))

	return Projected{
		X:   xp,
		Y:   yp,
		OOZ: ooz,
		L:   luminance(sinT, cosT, sinP, cosP, rot),
	}, true
}

// Luminance is the dot product of the rotated surface normal with the light
// direction (0, 1, -1).
func Luminance(s Sample, rot Rotation) float64 {
	sinT, cosT := math.Sincos(s.Theta)
	sinP, cosP := math.Sincos(s.Phi)
	return luminance(sinT, cosT, sinP, cosP, rot)
}

func luminance(sinT, cosT, sinP, cosP float64, rot Rotation) float64 {
	return cosP*cosT*rot.sinB - rot.cosA*cosT*sinP - rot.sinA*sinT +
		rot.cosB*(rot.cosA*sinT-cosT*rot.sinA*sinP)
}
