// Package hud derives the cluster lane display and warning codes.
package hud

import "scc-control-core/closed_loop/vehicle"

// VisualAlert is the alert the controls layer wants shown.
type VisualAlert int

const (
	AlertNone VisualAlert = iota
	AlertFCW
	AlertSteerRequired
	AlertBrakePressed
	AlertWrongGear
	AlertSeatbeltUnbuckled
	AlertSpeedTooHigh
	AlertLDW
)

// Lane state codes shown by the cluster.
const (
	LaneOff          = 0
	LaneNone         = 1
	LaneBothActive   = 3
	LaneBothInactive = 4
	LaneLeftOnly     = 5
	LaneRightOnly    = 6
)

// Input is everything the lane display depends on.
type Input struct {
	Active       bool // lateral control engaged
	Fingerprint  vehicle.Fingerprint
	Alert        VisualAlert
	LeftLane     bool
	RightLane    bool
	LeftDepart   bool
	RightDepart  bool
	LKASToggleOn bool
}

// Output is the derived display state.
type Output struct {
	Warning       bool
	LaneState     int
	LeftSeverity  int
	RightSeverity int
}

// Derive maps lane visibility and warnings to cluster codes.
func Derive(in Input) Output {
	var out Output
	out.Warning = in.Alert == AlertSteerRequired

	switch {
	case !in.LKASToggleOn:
		out.LaneState = LaneOff
	case (in.LeftLane && in.RightLane) || out.Warning:
		if in.Active || out.Warning {
			out.LaneState = LaneBothActive
		} else {
			out.LaneState = LaneBothInactive
		}
	case in.LeftLane:
		out.LaneState = LaneLeftOnly
	case in.RightLane:
		out.LaneState = LaneRightOnly
	default:
		out.LaneState = LaneNone
	}

	severity := 2
	if in.Fingerprint.GenesisFamily() {
		severity = 1
	}
	if in.LeftDepart {
		out.LeftSeverity = severity
	}
	if in.RightDepart {
		out.RightSeverity = severity
	}
	return out
}
