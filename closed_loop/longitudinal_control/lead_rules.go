package control

import (
	"math"

	"scc-control-core/closed_loop/vehicle"
)

// LeadInput is what the lead-follow rules look at.
type LeadInput struct {
	ClusterSpeed   float64 // kph, own speed as shown on the cluster
	VSetDis        float64 // kph, displayed cruise set speed
	CruiseSetSpeed float64 // kph, driver-set target
	DriverAccel    bool    // driver recently accelerated past the set speed
	DRel           float64 // m
	YRel           float64 // m, lateral offset
	VRel           float64 // kph, negative when closing
}

// leadCtx is LeadInput plus derived gap values.
type leadCtx struct {
	LeadInput
	gap      float64 // distance above the desired following gap, 0 without lead
	closing  float64 // lead relative speed, 0 without lead
	safeDiff float64
}

// Action says how a rule turns its delta into a target speed.
type Action int

const (
	// ActStep steps from the cluster speed by Delta.
	ActStep Action = iota
	// ActTrackDriver targets the cluster speed.
	ActTrackDriver
	// ActBelowSet steps one below the displayed set speed, floored at 30.
	ActBelowSet
	// ActCruiseSet targets the driver-set speed.
	ActCruiseSet
)

// LeadRule is one row of the lead-follow table.
type LeadRule struct {
	Code   int
	When   func(c *leadCtx) bool
	Action Action
	Delta  int
	Hold   int
}

// LeadTarget is the outcome of the lead-follow stage.
type LeadTarget struct {
	Speed float64 // kph
	Hold  int     // ticks the timer must reach before acting
	Code  int
}

const (
	// Followed when no rule fires; longer than the timer can count, so
	// nothing is sent.
	noActionHold = 600
	stockCode    = 0
	noRuleCode   = 1

	defaultGapRatio = 0.7
	closingFloor    = -5

	// A step waits slowHold ticks when the displayed set speed is already
	// this far past the cluster speed in the step's direction.
	defaultSafetyDiff = 5
	slowHold          = 100
)

func (c *leadCtx) tracking() bool    { return c.gap < 0 }
func (c *leadCtx) cruiseAbove() bool { return c.CruiseSetSpeed > c.ClusterSpeed }

// LeadRules is evaluated top-down; the first match wins.
var LeadRules = []LeadRule{
	{Code: 2, Action: ActTrackDriver, Hold: 100,
		When: func(c *leadCtx) bool { return c.DriverAccel }},
	{Code: 3, Delta: -10, Hold: 15,
		When: func(c *leadCtx) bool { return c.VSetDis >= 80 && c.closing < -30 }},
	{Code: 31, Delta: -8, Hold: 15,
		When: func(c *leadCtx) bool { return c.VSetDis >= 70 && c.closing < -20 }},
	{Code: 4, Delta: -6, Hold: 15,
		When: func(c *leadCtx) bool { return c.VSetDis >= 60 && c.closing < -15 }},

	// Closer than the following gap.
	{Code: 61, Action: ActBelowSet, Hold: 200,
		When: func(c *leadCtx) bool {
			return c.tracking() && c.closing >= 0 && c.VSetDis > c.ClusterSpeed+20
		}},
	{Code: 62, Delta: 1, Hold: 20,
		When: func(c *leadCtx) bool { return c.tracking() && c.closing >= 0 }},
	{Code: 7, Delta: -6, Hold: 15,
		When: func(c *leadCtx) bool {
			return c.tracking() && (c.closing < -30 || (c.DRel < 60 && c.ClusterSpeed > 60 && c.closing < -5))
		}},
	{Code: 8, Delta: -4, Hold: 20,
		When: func(c *leadCtx) bool {
			return c.tracking() && (c.closing < -20 || (c.DRel < 80 && c.ClusterSpeed > 80 && c.closing < -5))
		}},
	{Code: 9, Delta: -2, Hold: 50,
		When: func(c *leadCtx) bool { return c.tracking() && c.closing < -10 }},
	{Code: 10, Delta: -2, Hold: 80,
		When: func(c *leadCtx) bool { return c.tracking() && c.closing < 0 }},
	{Code: 11, Delta: 1, Hold: 50,
		When: func(c *leadCtx) bool { return c.tracking() }},

	// At or beyond the following gap.
	{Code: 12, Delta: -4, Hold: 15,
		When: func(c *leadCtx) bool { return c.closing < -20 && c.DRel < 50 }},
	{Code: 13, Delta: -2, Hold: 50,
		When: func(c *leadCtx) bool { return c.closing < -10 && c.DRel < 30 }},
	{Code: 14, Delta: -2, Hold: 150,
		When: func(c *leadCtx) bool { return c.closing < closingFloor }},
	{Code: 17, Delta: 1, Hold: 10,
		When: func(c *leadCtx) bool { return c.cruiseAbove() && c.DRel >= vehicle.NoLeadDistance }},
	{Code: 18, Action: ActCruiseSet, Hold: noActionHold,
		When: func(c *leadCtx) bool { return c.cruiseAbove() && c.closing < closingFloor }},
	{Code: 20, Delta: 1, Hold: 15,
		When: func(c *leadCtx) bool { return c.cruiseAbove() && c.closing < 5 }},
	{Code: 21, Delta: 1, Hold: 15,
		When: func(c *leadCtx) bool { return c.cruiseAbove() && c.closing < 10 }},
	{Code: 22, Delta: 1, Hold: 15,
		When: func(c *leadCtx) bool { return c.cruiseAbove() && c.closing < 30 }},
	{Code: 23, Delta: 1, Hold: 15,
		When: func(c *leadCtx) bool { return c.cruiseAbove() }},
}

// FollowGap is the desired distance to the lead at a cluster speed, capped
// at 50 m above 30 kph and 100 m above 60 kph.
func FollowGap(clusterSpeed, ratio float64) float64 {
	gap := clusterSpeed * ratio
	switch {
	case gap > 42:
		return 100
	case gap > 21:
		return 50
	}
	return gap
}

// EvaluateLead runs the lead-follow table. Stock cruise modes (0 and 1) leave
// the driver-set speed alone.
func EvaluateLead(in LeadInput, cruiseSetMode int, cfg Config) LeadTarget {
	if cruiseSetMode == 0 || cruiseSetMode == 1 {
		return LeadTarget{Speed: in.CruiseSetSpeed, Hold: noActionHold, Code: stockCode}
	}

	c := &leadCtx{LeadInput: in, safeDiff: cfg.SafetyDiff}
	if in.DRel < vehicle.NoLeadDistance {
		c.gap = in.DRel - FollowGap(in.ClusterSpeed, cfg.FollowGapRatio)
		c.closing = in.VRel
	}

	for i := range LeadRules {
		r := &LeadRules[i]
		if r.When(c) {
			return r.apply(c)
		}
	}
	return LeadTarget{Speed: in.CruiseSetSpeed, Hold: noActionHold, Code: noRuleCode}
}

func (r *LeadRule) apply(c *leadCtx) LeadTarget {
	t := LeadTarget{Hold: r.Hold, Code: r.Code}
	switch r.Action {
	case ActTrackDriver:
		t.Speed = c.ClusterSpeed
	case ActBelowSet:
		t.Speed = c.VSetDis - 1
		if t.Speed < 40 {
			t.Speed = 30
		}
	case ActCruiseSet:
		t.Speed = math.Trunc(c.CruiseSetSpeed)
	default:
		t.Speed, t.Hold = c.stepFromCluster(r.Delta, r.Hold)
	}
	return t
}

// stepFromCluster targets the cluster speed plus delta. When the displayed
// set speed is already more than safeDiff past the cluster speed in the
// direction of travel, the hold is lengthened so the cruise module settles.
func (c *leadCtx) stepFromCluster(delta, hold int) (float64, int) {
	offset := c.VSetDis - c.ClusterSpeed
	if delta > 0 && offset > c.safeDiff {
		hold = slowHold
	}
	if delta <= 0 && offset < -c.safeDiff {
		hold = slowHold
	}
	return math.Trunc(c.ClusterSpeed) + float64(delta), hold
}
