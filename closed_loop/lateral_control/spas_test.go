package lateral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlewBoundedAndClamped(t *testing.T) {
	s := NewSPASState()
	prev := s.AppliedAngle
	for i := 0; i < 400; i++ {
		got := s.Slew(1000, SteerAngleMaxRate)
		assert.LessOrEqual(t, math.Abs(got-prev), SteerAngleMaxRate+1e-9)
		prev = got
	}
	assert.Equal(t, SteerAngleMax, s.AppliedAngle)

	s.AppliedAngle = 10
	assert.Equal(t, 10.5, s.Slew(10.5, SteerAngleMaxRate), "small steps land exactly")
	assert.Equal(t, 9.0, s.Slew(-20, SteerAngleMaxRate))
}

func TestAdvanceEnableSequence(t *testing.T) {
	s := NewSPASState()
	assert.Equal(t, SPASIdle, s.Stage)

	for i := 0; i < SPASEnableTicks; i++ {
		assert.Equal(t, SPASPhase1, s.Advance(true, 0, 0), "tick %d", i)
	}
	assert.Equal(t, SPASPhase2, s.Advance(true, 0, 0))
	assert.Equal(t, SPASPhase2, s.Advance(true, 0, 0))

	s.AppliedAngle = 30
	assert.Equal(t, SPASIdle, s.Advance(false, 0, 12.5))
	assert.Equal(t, 12.5, s.AppliedAngle, "angle re-anchors to the measurement")
	assert.Equal(t, SPASPhase1, s.Advance(true, 0, 0))
}

func TestAdvanceFault(t *testing.T) {
	s := NewSPASState()
	for i := 0; i < 10; i++ {
		s.Advance(true, 0, 0)
	}
	a := assert.New(t)
	a.Equal(SPASPhase2, s.Stage)

	for i := 0; i < SPASEnableTicks; i++ {
		a.Equal(SPASForced, s.Advance(true, SPASFaultStatus, 0), "tick %d", i)
	}
	a.Equal(SPASIdle, s.Advance(true, SPASFaultStatus, 0))
	a.Equal(SPASPhase1, s.Advance(true, SPASFaultStatus, 0), "a held fault does not force again")
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "forced", SPASForced.String())
	assert.Equal(t, 7, int(SPASForced))
}

func TestSlewNonFinite(t *testing.T) {
	s := NewSPASState()
	s.AppliedAngle = 20
	assert.Equal(t, 20.0, s.Slew(math.NaN(), SteerAngleMaxRate))
	assert.Equal(t, 20.0, s.Slew(math.Inf(-1), SteerAngleMaxRate))

	s.AppliedAngle = math.NaN()
	assert.Equal(t, 1.5, s.Slew(10, SteerAngleMaxRate))

	s.Advance(false, 0, math.NaN())
	assert.Equal(t, 0.0, s.AppliedAngle)
}
