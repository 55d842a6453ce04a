package vehicle

import "scc-control-core/closed_loop/canmsg"

// Driver override codes reported by the cluster.
const (
	OverrideNone  = 0
	OverrideGas   = 1
	OverrideBrake = 2
)

// Cruise switch states while a cruise mode change is mid-press.
const (
	CruiseSwResAccel = 1
	CruiseSwSetDecel = 2
)

// CarState is one decoded snapshot of the vehicle. It is built by the bus
// decoder and treated as immutable for the tick it belongs to.
type CarState struct {
	VEgo           float64 `json:"v_ego"` // m/s
	SteeringTorque float64 `json:"steering_torque"`
	SteeringAngle  float64 `json:"steering_angle"`
	Standstill     bool    `json:"standstill"`

	LeftBlinker       bool `json:"left_blinker"`
	RightBlinker      bool `json:"right_blinker"`
	LeftBlinkerFlash  bool `json:"left_blinker_flash"`
	RightBlinkerFlash bool `json:"right_blinker_flash"`

	ClusterSpeed   float64 `json:"clu_vanz"` // cluster units
	SpeedInMph     bool    `json:"speed_in_mph"`
	VSetDis        float64 `json:"vset_dis"`
	CruiseSetSpeed float64 `json:"cruise_set_speed_kph"`
	CruiseSetMode  int     `json:"cruise_set_mode"`
	CruiseSet      bool    `json:"cruise_set"`
	CruiseAvail    bool    `json:"cruise_available"`
	CruiseSwState  int     `json:"cruise_sw_state"`
	DriverOverride int     `json:"driver_override"`
	DriverAccel    bool    `json:"driver_accelerating"`
	LeadDistance   float64 `json:"lead_distance"` // radar, m

	MDPSStatus     int     `json:"mdps_status"`
	MDPSSteerAngle float64 `json:"mdps_steer_angle"`

	HasSCC13 bool `json:"has_scc13"`
	HasSCC14 bool `json:"has_scc14"`

	LKAS11 canmsg.Signals `json:"lkas11,omitempty"`
	CLU11  canmsg.Signals `json:"clu11,omitempty"`
	MDPS12 canmsg.Signals `json:"mdps12,omitempty"`
	SCC11  canmsg.Signals `json:"scc11,omitempty"`
	SCC12  canmsg.Signals `json:"scc12,omitempty"`
	SCC13  canmsg.Signals `json:"scc13,omitempty"`
	SCC14  canmsg.Signals `json:"scc14,omitempty"`
	EMS11  canmsg.Signals `json:"ems11,omitempty"`
}

// Echo returns the snapshot's received messages for re-transmission.
func (cs *CarState) Echo() canmsg.Echo {
	return canmsg.Echo{
		LKAS11: cs.LKAS11,
		CLU11:  cs.CLU11,
		MDPS12: cs.MDPS12,
		SCC11:  cs.SCC11,
		SCC12:  cs.SCC12,
		SCC13:  cs.SCC13,
		SCC14:  cs.SCC14,
		EMS11:  cs.EMS11,
	}
}

// Actuators is the per-tick target bundle from the planner.
type Actuators struct {
	Gas        float64 `json:"gas"`
	Brake      float64 `json:"brake"`
	Steer      float64 `json:"steer"`       // fraction of max torque, -1..1
	SteerAngle float64 `json:"steer_angle"` // deg
}

// ModelLead is the vision model's lead estimate.
type ModelLead struct {
	Prob   float64 `json:"prob"`
	Dist   float64 `json:"dist"`    // m, from the camera
	RelY   float64 `json:"rel_y"`   // m
	RelVel float64 `json:"rel_vel"` // m/s, negative when closing
}

// RadarToCamera is the longitudinal offset between the radar and camera.
const RadarToCamera = 1.52

// Lead is the lead vehicle relative state used by the speed policy.
type Lead struct {
	DRel    float64 // m
	YRel    float64 // m
	VRelKph int     // kph, negative when closing
}

// NoLeadDistance is the distance reported when nothing is ahead.
const NoLeadDistance = 150

// Resolve converts the model lead into policy units. Leads the model is not
// confident about read as nothing ahead.
func (l ModelLead) Resolve() Lead {
	if l.Prob <= 0.5 {
		return Lead{DRel: NoLeadDistance}
	}
	return Lead{
		DRel:    l.Dist - RadarToCamera,
		YRel:    l.RelY,
		VRelKph: int(l.RelVel*MsToKph + 0.5),
	}
}

// ModelFeed is the lane/model prediction input for one tick.
type ModelFeed struct {
	Lead ModelLead `json:"lead"`
	// PathPoly is the cubic path polynomial, highest order first. Empty when
	// the model has no path.
	PathPoly []float64 `json:"path_poly,omitempty"`
}
