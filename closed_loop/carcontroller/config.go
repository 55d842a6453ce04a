package carcontroller

import (
	control "scc-control-core/closed_loop/longitudinal_control"
	"scc-control-core/closed_loop/vehicle"
)

// Config holds the controller policy constants.
type Config struct {
	AccelHystGap float64 // m/s²
	AccelMax     float64 // m/s²
	AccelMin     float64 // m/s²

	TurnSignalHold  int     // ticks
	TurnSignalSpeed float64 // m/s, blinkers only suppress steering below this
	// GenesisFaultSpeed is the speed below which the first generation
	// Genesis faults its MDPS when steered from bus 0.
	GenesisFaultSpeed float64 // m/s

	ResumeMinLeadDist   float64 // m
	ResumeIntervalTicks int

	SPASAlways   bool
	SPASMaxSpeed float64 // m/s
	SPASMaxRate  float64 // deg per tick

	LKASButtonOn        bool
	SpeedControlEnabled bool

	// Speed button bridge timers, in ticks.
	ButtonResetWait int // wait after an override or mode change
	ButtonCooldown  int // wait after a press is released
	ButtonHold      int // ticks a latched press is held
	// MinButtonSpeed is the cluster speed below which no button is held.
	MinButtonSpeed float64
	// AutoSetSpeed lets cruise set mode 3 press buttons while cruise is not
	// in set state, once the cluster speed exceeds it.
	AutoSetSpeed float64

	MinSetSpeed float64 // m/s
	MaxSetSpeed float64 // m/s

	// Cluster speed shown to an MDPS that is not on bus 0 while steering.
	EnabledSpeedKph float64
	EnabledSpeedMph float64

	Policy control.Config
}

func DefaultConfig() Config {
	return Config{
		AccelHystGap: 0.02,
		AccelMax:     1.5,
		AccelMin:     -3.0,

		TurnSignalHold:    100,
		TurnSignalSpeed:   16.7,
		GenesisFaultSpeed: 60 * vehicle.KphToMs,

		ResumeMinLeadDist:   3.7,
		ResumeIntervalTicks: 20,

		SPASMaxSpeed: 7.0,
		SPASMaxRate:  1.5,

		LKASButtonOn:        true,
		SpeedControlEnabled: true,

		ButtonResetWait: 10,
		ButtonCooldown:  5,
		ButtonHold:      10,
		MinButtonSpeed:  5,
		AutoSetSpeed:    30,

		MinSetSpeed: 30 * vehicle.KphToMs,
		MaxSetSpeed: 255 * vehicle.KphToMs,

		EnabledSpeedKph: 60,
		EnabledSpeedMph: 38,

		Policy: control.DefaultConfig(),
	}
}

// WithTuning applies the profile's overrides.
func (c Config) WithTuning(t vehicle.Tuning) Config {
	if t.SpeedControl != nil {
		c.SpeedControlEnabled = *t.SpeedControl
	}
	if t.LKASButtonOn != nil {
		c.LKASButtonOn = *t.LKASButtonOn
	}
	if t.SPASAlways != nil {
		c.SPASAlways = *t.SPASAlways
	}
	if t.FollowGapRatio != nil {
		c.Policy.FollowGapRatio = *t.FollowGapRatio
	}
	if t.SafetyDiff != nil {
		c.Policy.SafetyDiff = *t.SafetyDiff
	}
	return c
}
