package lateral

// SPASStage is the enable sequence state sent in SPAS11. The numeric values
// are what the MDPS expects.
type SPASStage int

const (
	SPASIdle   SPASStage = 3
	SPASPhase1 SPASStage = 4
	SPASPhase2 SPASStage = 5
	SPASForced SPASStage = 7
)

func (s SPASStage) String() string {
	switch s {
	case SPASIdle:
		return "idle"
	case SPASPhase1:
		return "phase1"
	case SPASPhase2:
		return "phase2"
	case SPASForced:
		return "forced"
	default:
		return "unknown"
	}
}

const (
	// SPASEnableTicks is how many status ticks the MDPS needs in Phase1
	// before it accepts angle commands.
	SPASEnableTicks = 8
	// SPASFaultStatus is the MDPS status code reported on an SPAS fault.
	SPASFaultStatus = 7

	SteerAngleMax     = 360.0 // deg
	SteerAngleMaxRate = 1.5   // deg per tick
)

// SPASState is the persistent part of angle-based actuation.
type SPASState struct {
	AppliedAngle float64
	Stage        SPASStage
	Ticks        int
	LastStatus   int
}

// NewSPASState returns the state at power-up.
func NewSPASState() SPASState {
	return SPASState{Stage: SPASIdle}
}

// Slew moves the applied angle toward the requested angle by at most
// maxRate, after clamping the request to ±SteerAngleMax. A non-finite
// request holds the current angle.
func (s *SPASState) Slew(requested, maxRate float64) float64 {
	s.AppliedAngle = finiteOr(s.AppliedAngle, 0)
	req := clip(finiteOr(requested, s.AppliedAngle), -SteerAngleMax, SteerAngleMax)
	switch d := req - s.AppliedAngle; {
	case d > maxRate:
		s.AppliedAngle += maxRate
	case d < -maxRate:
		s.AppliedAngle -= maxRate
	default:
		s.AppliedAngle = req
	}
	return s.AppliedAngle
}

// Advance steps the enable sequence by one status tick.
//
// A rising fault status forces the sequence into Forced until Ticks again
// reaches SPASEnableTicks, then it drops to Idle. Otherwise an active
// request walks Idle → Phase1 → Phase2. An inactive request always resets to
// Idle and re-anchors the applied angle at the measured angle.
func (s *SPASState) Advance(active bool, mdpsStatus int, measuredAngle float64) SPASStage {
	if mdpsStatus == SPASFaultStatus && s.LastStatus != SPASFaultStatus {
		s.Stage = SPASForced
		s.Ticks = 0
	}

	switch {
	case !active:
		s.AppliedAngle = finiteOr(measuredAngle, 0)
		s.Stage = SPASIdle
		s.Ticks = 0
	case s.Stage == SPASForced:
		if s.Ticks >= SPASEnableTicks {
			s.Stage = SPASIdle
			s.Ticks = 0
		}
	case s.Ticks < SPASEnableTicks:
		s.Stage = SPASPhase1
	default:
		s.Stage = SPASPhase2
	}

	s.LastStatus = mdpsStatus
	s.Ticks++
	return s.Stage
}
