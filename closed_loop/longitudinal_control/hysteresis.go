package control

// AccelHysteresis holds the output at steady while accel stays within gap of
// it. Outside the band the anchor snaps to the near edge of the band around
// accel.
func AccelHysteresis(accel, steady, gap float64) (out, newSteady float64) {
	switch {
	case accel > steady+gap:
		steady = accel - gap
	case accel < steady-gap:
		steady = accel + gap
	}
	return steady, steady
}
