package control

import (
	"math"

	"scc-control-core/closed_loop/vehicle"
)

const (
	// MaxModelSpeed is reported when the path gives no curvature limit.
	MaxModelSpeed = 255.0 // kph

	pathSamples      = 192
	minCurvature     = 1e-4
	modelSpeedFloor  = 30 * vehicle.MphToMs // m/s
	ModelSpeedWindow = 10
)

// CurvatureSpeed is the highest speed, in kph, that keeps lateral
// acceleration along the predicted path within a speed-dependent limit. poly
// is the cubic path y = a·x³ + b·x² + c·x + d, highest order first, sampled at
// x = 0..191 m. Speeds are floored at 30 mph and capped at MaxModelSpeed.
func CurvatureSpeed(poly []float64, vEgo float64) float64 {
	if len(poly) < 3 {
		return MaxModelSpeed
	}
	a, b, c := poly[0], poly[1], poly[2]

	aYMax := math.Max(2.975-vEgo*0.0375, 0)
	vMin := math.Inf(1)
	for i := 0; i < pathSamples; i++ {
		x := float64(i)
		yp := 3*a*x*x + 2*b*x + c
		ypp := 6*a*x + 2*b
		k := math.Abs(ypp / math.Pow(1+yp*yp, 1.5))
		v := math.Sqrt(aYMax / math.Max(k, minCurvature))
		if v < vMin {
			vMin = v
		}
	}

	speed := math.Max(modelSpeedFloor, vMin) * vehicle.MsToKph
	return math.Min(speed, MaxModelSpeed)
}

// MovingMin returns the minimum of the last ModelSpeedWindow samples.
type MovingMin struct {
	buf  [ModelSpeedWindow]float64
	n    int
	next int
}

// Add records v and returns the window minimum including it.
func (m *MovingMin) Add(v float64) float64 {
	m.buf[m.next] = v
	m.next = (m.next + 1) % len(m.buf)
	if m.n < len(m.buf) {
		m.n++
	}
	return m.Min()
}

// Min is the current window minimum, or MaxModelSpeed when empty.
func (m *MovingMin) Min() float64 {
	if m.n == 0 {
		return MaxModelSpeed
	}
	out := math.Inf(1)
	for i := 0; i < m.n; i++ {
		out = math.Min(out, m.buf[i])
	}
	return out
}
