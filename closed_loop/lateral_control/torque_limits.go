// Package lateral bounds steering commands before they reach the bus.
package lateral

import (
	"math"

	"scc-control-core/closed_loop/vehicle"
)

// LimitTorque bounds a torque request against the previous applied torque
// and the torque the driver is putting into the wheel. The magnitude is
// capped at lim.Max and shrinks when the driver resists; growth in magnitude
// is limited to DeltaUp per tick and decay to DeltaDown.
//
// The result is rounded to whole torque units. wasLimited reports whether the
// result differs from target. A non-finite previous or driver torque reads as
// 0, and a non-finite target holds the previous torque.
func LimitTorque(target, previous, driverTorque float64, lim vehicle.SteerLimits) (limited float64, wasLimited bool) {
	previous = finiteOr(previous, 0)
	driverTorque = finiteOr(driverTorque, 0)
	req := finiteOr(target, previous)

	driverMax := lim.Max + (lim.DriverAllowance+driverTorque*lim.DriverFactor)*lim.DriverMultiplier
	driverMin := -lim.Max + (-lim.DriverAllowance+driverTorque*lim.DriverFactor)*lim.DriverMultiplier
	maxAllowed := math.Max(math.Min(lim.Max, driverMax), 0)
	minAllowed := math.Min(math.Max(-lim.Max, driverMin), 0)
	out := clip(req, minAllowed, maxAllowed)

	if previous > 0 {
		out = clip(out, math.Max(previous-lim.DeltaDown, -lim.DeltaUp), previous+lim.DeltaUp)
	} else {
		out = clip(out, previous-lim.DeltaUp, math.Min(previous+lim.DeltaDown, lim.DeltaUp))
	}

	out = math.RoundToEven(out)
	return out, out != target
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
