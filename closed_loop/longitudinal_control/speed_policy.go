package control

import (
	"math"

	"scc-control-core/closed_loop/canmsg"
	"scc-control-core/closed_loop/vehicle"
)

// Debug codes for the arbitration stage. Lead-follow codes come from
// LeadRules.
const (
	DebugDriverSet = 97
	DebugDecel     = 98
	DebugAccel     = 99
)

// PolicyState is everything the engine carries between ticks.
type PolicyState struct {
	CurveTimer        int
	ModelSpeed        MovingMin
	DebugStep         int
	DisplayedSetSpeed float64 // resynced to the cluster speed every tick
}

// Decision is one tick's output of the engine.
type Decision struct {
	Button      canmsg.Button
	TargetSpeed float64 // kph, sent with the button
	Hold        int
	Step        int
	LeadCode    int
}

// Engine nudges the vehicle's own cruise set speed toward a lead-follow
// target by choosing which button press to emulate.
type Engine struct {
	cfg   Config
	State PolicyState
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// ModelSpeed feeds one path polynomial through the curvature limit and the
// moving-minimum filter and returns the smoothed speed in kph.
func (e *Engine) ModelSpeed(poly []float64, vEgo float64) float64 {
	return e.State.ModelSpeed.Add(CurvatureSpeed(poly, vEgo))
}

// StepFor maps a set-speed error to a button step of 1..cap kph.
func StepFor(delta, cap int) int {
	d := delta
	if d < 0 {
		d = -d
	}
	var step int
	switch {
	case d > 3:
		step = 4
	case d > 2:
		step = 3
	case d > 1:
		step = 2
	default:
		step = 1
	}
	if cap > 0 && step > cap {
		step = cap
	}
	return step
}

// Decide runs both stages for one tick. The first argument is the ego speed
// in kph; the rules reason from the cluster speed instead and ignore it.
func (e *Engine) Decide(_ float64, cs *vehicle.CarState, lead vehicle.Lead, modelSpeed float64) Decision {
	s := &e.State
	if s.CurveTimer < e.cfg.TimerCap {
		s.CurveTimer++
	}

	lt := EvaluateLead(LeadInput{
		ClusterSpeed:   cs.ClusterSpeed,
		VSetDis:        cs.VSetDis,
		CruiseSetSpeed: cs.CruiseSetSpeed,
		DriverAccel:    cs.DriverAccel,
		DRel:           lead.DRel,
		YRel:           lead.YRel,
		VRel:           float64(lead.VRelKph),
	}, cs.CruiseSetMode, e.cfg)
	s.DebugStep = lt.Code

	target := lt.Speed
	if target > cs.CruiseSetSpeed {
		target = cs.CruiseSetSpeed
	} else if target < e.cfg.MinSetSpeed {
		target = e.cfg.MinSetSpeed
	}

	delta := int(math.Trunc(target)) - int(math.Trunc(cs.VSetDis))
	d := Decision{TargetSpeed: target, Hold: lt.Hold, LeadCode: lt.Code}
	d.Step = StepFor(delta, e.cfg.StepCap)

	switch {
	case s.CurveTimer < lt.Hold:
	case cs.DriverOverride == vehicle.OverrideGas:
		if cs.CruiseSetSpeed > cs.ClusterSpeed &&
			int(math.Trunc(cs.ClusterSpeed))-int(math.Trunc(cs.VSetDis)) > 1 {
			d.TargetSpeed = cs.ClusterSpeed
			d.Button = canmsg.ButtonSetDecel
			s.DebugStep = DebugDriverSet
		}
	case delta <= -1:
		d.TargetSpeed = cs.VSetDis - float64(d.Step)
		d.Button = canmsg.ButtonSetDecel
		s.DebugStep = DebugDecel
		s.CurveTimer = 0
	case delta >= 1 && (modelSpeed > e.cfg.StraightModelSpeed || cs.ClusterSpeed < e.cfg.CurveCheckSpeed):
		d.TargetSpeed = math.Min(cs.VSetDis+float64(d.Step), cs.CruiseSetSpeed)
		d.Button = canmsg.ButtonResAccel
		s.DebugStep = DebugAccel
		s.CurveTimer = 0
	}

	s.DisplayedSetSpeed = cs.ClusterSpeed

	if cs.CruiseSetMode == 0 {
		d.Button = canmsg.ButtonNone
	}
	return d
}
