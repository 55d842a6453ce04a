package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccelHysteresisHoldsInsideBand(t *testing.T) {
	out, steady := AccelHysteresis(0.5, 0, 0.02)
	assert.InDelta(t, 0.48, out, 1e-9)
	assert.InDelta(t, 0.48, steady, 1e-9)

	for _, a := range []float64{0.49, 0.5, 0.46, 0.47} {
		out, steady = AccelHysteresis(a, steady, 0.02)
		assert.InDelta(t, 0.48, out, 1e-9, "accel %v is within the band", a)
	}

	out, _ = AccelHysteresis(0.4, steady, 0.02)
	assert.InDelta(t, 0.42, out, 1e-9)
}

func TestClampFloat(t *testing.T) {
	assert.Equal(t, 1.5, ClampFloat(4, -3, 1.5))
	assert.Equal(t, -3.0, ClampFloat(-9, -3, 1.5))
	assert.Equal(t, 0.2, ClampFloat(0.2, -3, 1.5))
}
