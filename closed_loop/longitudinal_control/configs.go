package control

// Config holds the speed policy thresholds.
type Config struct {
	FollowGapRatio float64 // following gap per kph of cluster speed, m
	SafetyDiff     float64 // kph
	MinSetSpeed    float64 // kph
	TimerCap       int     // ticks
	StepCap        int     // largest single set-speed step, kph
	// Upward steps are only sent when the path ahead allows more than
	// StraightModelSpeed or the cluster speed is below CurveCheckSpeed.
	StraightModelSpeed float64 // kph
	CurveCheckSpeed    float64 // kph
}

func DefaultConfig() Config {
	return Config{
		FollowGapRatio:     defaultGapRatio,
		SafetyDiff:         defaultSafetyDiff,
		MinSetSpeed:        30,
		TimerCap:           120,
		StepCap:            4,
		StraightModelSpeed: 200,
		CurveCheckSpeed:    70,
	}
}
