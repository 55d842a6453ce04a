package control

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scc-control-core/closed_loop/canmsg"
	"scc-control-core/closed_loop/vehicle"
)

func TestStepFor(t *testing.T) {
	for delta, want := range map[int]int{1: 1, -1: 1, 2: 2, -3: 3, 4: 4, -24: 4, 50: 4} {
		assert.Equal(t, want, StepFor(delta, 4), "delta %d", delta)
	}
	assert.Equal(t, 2, StepFor(-10, 2))
}

func highwayState() *vehicle.CarState {
	return &vehicle.CarState{
		VEgo:           20,
		ClusterSpeed:   72,
		VSetDis:        90,
		CruiseSetSpeed: 100,
		CruiseSetMode:  2,
		CruiseSet:      true,
		CruiseAvail:    true,
	}
}

// 20 m/s behind a lead 40 m ahead closing at 2 m/s, set speed 90 of 100.
func TestDecideSlowsForClosingLead(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cs := highwayState()
	lead := vehicle.ModelLead{Prob: 0.9, Dist: 40 + vehicle.RadarToCamera, RelVel: -2}.Resolve()
	assert.Equal(t, -6, lead.VRelKph)

	var d Decision
	for i := 0; i < 14; i++ {
		d = e.Decide(cs.VEgo*vehicle.MsToKph, cs, lead, MaxModelSpeed)
		assert.Equal(t, canmsg.ButtonNone, d.Button, "call %d is inside the hold", i)
		assert.Equal(t, 7, e.State.DebugStep)
	}

	d = e.Decide(cs.VEgo*vehicle.MsToKph, cs, lead, MaxModelSpeed)
	assert.Equal(t, canmsg.ButtonSetDecel, d.Button)
	assert.Equal(t, 15, d.Hold)
	assert.Equal(t, 7, d.LeadCode)
	assert.Equal(t, 4, d.Step)
	assert.Equal(t, 86.0, d.TargetSpeed)
	assert.GreaterOrEqual(t, d.TargetSpeed, DefaultConfig().MinSetSpeed)
	assert.LessOrEqual(t, d.TargetSpeed, cs.CruiseSetSpeed)
	assert.Equal(t, DebugDecel, e.State.DebugStep)
	assert.Equal(t, 0, e.State.CurveTimer)
	assert.Equal(t, cs.ClusterSpeed, e.State.DisplayedSetSpeed)
}

func TestDecideTimerSaturates(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cs := highwayState()
	cs.CruiseSetMode = 1
	for i := 0; i < 300; i++ {
		d := e.Decide(72, cs, vehicle.Lead{DRel: vehicle.NoLeadDistance}, MaxModelSpeed)
		assert.Equal(t, canmsg.ButtonNone, d.Button)
	}
	assert.Equal(t, 120, e.State.CurveTimer)
}

func TestDecideAccelSuppressedBeforeCurve(t *testing.T) {
	cs := highwayState()
	cs.ClusterSpeed, cs.VSetDis = 80, 78
	noLead := vehicle.Lead{DRel: vehicle.NoLeadDistance}

	run := func(modelSpeed float64) (Decision, *Engine) {
		e := NewEngine(DefaultConfig())
		var d Decision
		for i := 0; i < 10; i++ {
			d = e.Decide(80, cs, noLead, modelSpeed)
		}
		return d, e
	}

	d, _ := run(100)
	assert.Equal(t, canmsg.ButtonNone, d.Button)
	assert.Equal(t, 17, d.LeadCode)

	d, e := run(MaxModelSpeed)
	assert.Equal(t, canmsg.ButtonResAccel, d.Button)
	assert.Equal(t, 3, d.Step)
	assert.Equal(t, 81.0, d.TargetSpeed)
	assert.Equal(t, DebugAccel, e.State.DebugStep)
}

func TestDecideDriverOnGas(t *testing.T) {
	cs := highwayState()
	cs.ClusterSpeed, cs.VSetDis = 80, 70
	cs.DriverOverride = vehicle.OverrideGas

	e := NewEngine(DefaultConfig())
	var d Decision
	for i := 0; i < 10; i++ {
		d = e.Decide(80, cs, vehicle.Lead{DRel: vehicle.NoLeadDistance}, MaxModelSpeed)
	}
	assert.Equal(t, canmsg.ButtonSetDecel, d.Button)
	assert.Equal(t, 80.0, d.TargetSpeed)
	assert.Equal(t, DebugDriverSet, e.State.DebugStep)
	assert.Equal(t, 10, e.State.CurveTimer, "driver set does not restart the timer")
}

func TestDecideModeZeroSendsNothing(t *testing.T) {
	cs := highwayState()
	cs.CruiseSetMode = 0
	cs.DriverOverride = vehicle.OverrideGas
	cs.ClusterSpeed, cs.VSetDis = 80, 70

	e := NewEngine(DefaultConfig())
	for i := 0; i < 200; i++ {
		d := e.Decide(80, cs, vehicle.Lead{DRel: vehicle.NoLeadDistance}, MaxModelSpeed)
		assert.Equal(t, canmsg.ButtonNone, d.Button)
	}
}

func TestEngineModelSpeedSmooths(t *testing.T) {
	e := NewEngine(DefaultConfig())
	curve := []float64{0, 0.005, 0, 0}

	assert.Equal(t, MaxModelSpeed, e.ModelSpeed(nil, 20))
	assert.InDelta(t, 53.7, e.ModelSpeed(curve, 20), 0.01)
	assert.InDelta(t, 53.7, e.ModelSpeed(nil, 20), 0.01, "minimum holds after the curve")
}
