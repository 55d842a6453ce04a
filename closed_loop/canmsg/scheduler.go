package canmsg

const (
	lkasCounterMod = 0x10
	sccCounterMod  = 0xF
)

// Counters are the rolling message counters the vehicle's modules check for
// liveness. LKAS wraps at 16, SCC at 15.
type Counters struct {
	LKAS uint8
	SCC  uint8
}

// Seed initialises the counters from the last values seen on the bus.
func (c *Counters) Seed(lkas, scc int) {
	c.LKAS = uint8(wrap(lkas, lkasCounterMod))
	c.SCC = uint8(wrap(scc, sccCounterMod))
}

// NextLKAS advances the LKAS counter and returns the value to send.
func (c *Counters) NextLKAS() uint8 {
	c.LKAS = (c.LKAS + 1) % lkasCounterMod
	return c.LKAS
}

// TakeSCC returns the SCC counter value to send and advances it.
func (c *Counters) TakeSCC() uint8 {
	v := c.SCC % sccCounterMod
	c.SCC = (v + 1) % sccCounterMod
	return v
}

func wrap(v, mod int) int {
	v %= mod
	if v < 0 {
		v += mod
	}
	return v
}

// Cadences, in control ticks.
const (
	ClusterEvery  = 2  // CLU11 copy to an off-bus MDPS, odd ticks
	SCCEvery      = 2  // SCC11/SCC12/SCC14
	SCC13Every    = 20 // SCC13 extended info
	LFAEvery      = 5  // LFA/HDA HUD
	SPASStatEvery = 2  // SPAS11, 50 Hz
	SPASCmdEvery  = 5  // SPAS12, 20 Hz
)

func every(tick, n int) bool { return tick%n == 0 }

// SPASStatusDue reports whether SPAS11 goes out on tick. The SPAS enable
// sequence only advances on these ticks.
func SPASStatusDue(tick int) bool { return every(tick, SPASStatEvery) }

// Topology says which logical bus carries each subsystem.
type Topology struct {
	MDPSBus     int  // 0 when MDPS shares the camera bus
	SCCBus      int  // -1 when the radar is not on CAN
	SCCLive     bool // radar present on CAN
	LongControl bool // this controller owns longitudinal control
}

// ButtonBus is the bus cruise buttons are sent on.
func (t Topology) ButtonBus() int {
	if t.SCCBus < 0 {
		return 0
	}
	return t.SCCBus
}

// Variant holds the per-vehicle message options.
type Variant struct {
	LFAMFA      bool
	LaneModeUSM bool
	HasSCC13    bool
	HasSCC14    bool
	SPASFitted  bool
}

// Echo holds the last received copy of each message this controller re-sends.
type Echo struct {
	LKAS11 Signals
	CLU11  Signals
	MDPS12 Signals
	SCC11  Signals
	SCC12  Signals
	SCC13  Signals
	SCC14  Signals
	EMS11  Signals
}

// Plan is everything the controller decided for one tick.
type Plan struct {
	Tick     int
	Topology Topology
	Variant  Variant
	Echo     Echo

	Enabled    bool
	ApplySteer float64
	LKASActive bool
	HUD        LaneHUD

	ClusterSpeed float64 // reported cluster speed
	EnabledSpeed float64 // speed shown to an off-bus MDPS

	Cancel bool
	Resume bool

	SpeedButton     Button
	SpeedButtonSpd  float64
	SendSpeedButton bool

	Accel       float64
	SetSpeed    float64 // cluster units
	LeadVisible bool

	SPASActive bool
	SPASState  int
	SPASAngle  float64
}

// Schedule assembles the tick's messages in transmission order and advances
// counters only for messages actually emitted.
func Schedule(p *Plan, c *Counters) []Message {
	t := p.Topology
	out := make([]Message, 0, 12)

	lkasCnt := c.NextLKAS()
	lkasHUD := p.HUD
	lkasHUD.LaneModeUSM = p.Variant.LaneModeUSM
	out = append(out, lkas11(p.Echo.LKAS11, lkasCnt, p.ApplySteer, p.LKASActive, p.Enabled, lkasHUD, 0))
	if t.MDPSBus != 0 || t.SCCBus == 1 {
		out = append(out, lkas11(p.Echo.LKAS11, lkasCnt, p.ApplySteer, p.LKASActive, p.Enabled, lkasHUD, 1))
	}

	if p.Tick%ClusterEvery == 1 && t.MDPSBus != 0 {
		out = append(out, clu11(p.Echo.CLU11, p.Tick, t.MDPSBus, ButtonNone, p.EnabledSpeed))
	}

	cancel := p.Cancel && t.LongControl
	switch {
	case cancel:
		out = append(out, clu11(p.Echo.CLU11, p.Tick, t.ButtonBus(), ButtonCancel, p.ClusterSpeed))
	case p.Resume:
		out = append(out, clu11(p.Echo.CLU11, p.Tick, t.ButtonBus(), ButtonResAccel, p.ClusterSpeed))
	}

	if t.MDPSBus != 0 {
		out = append(out, mdps12(p.Echo.MDPS12, p.Tick))
	}

	// A cancel replaces any speed button on the same tick.
	if !cancel && p.SendSpeedButton && p.SpeedButton != ButtonNone {
		out = append(out, clu11(p.Echo.CLU11, p.Tick, t.ButtonBus(), p.SpeedButton, p.SpeedButtonSpd))
	}

	if t.LongControl && (t.SCCBus != 0 || !t.SCCLive) && every(p.Tick, SCCEvery) {
		out = append(out, scc12(p.Echo.SCC12, p.Accel, p.Enabled, c.TakeSCC(), t.SCCLive))
		out = append(out, scc11(p.Echo.SCC11, p.Tick, p.Enabled, p.SetSpeed, p.LeadVisible, t.SCCLive))
		if p.Variant.HasSCC13 && every(p.Tick, SCC13Every) {
			out = append(out, scc13(p.Echo.SCC13))
		}
		if p.Variant.HasSCC14 {
			out = append(out, scc14(p.Echo.SCC14, p.Enabled))
		}
	}

	if every(p.Tick, LFAEvery) && p.Variant.LFAMFA {
		out = append(out, lfaMFA(p.LKASActive))
	}

	if p.Variant.SPASFitted {
		if t.MDPSBus != 0 {
			out = append(out, ems11(p.Echo.EMS11, p.SPASActive, t.MDPSBus))
		}
		if SPASStatusDue(p.Tick) {
			out = append(out, spas11(p.Tick/2, p.SPASState, p.SPASAngle, t.MDPSBus))
		}
		if every(p.Tick, SPASCmdEvery) {
			out = append(out, spas12(t.MDPSBus))
		}
	}

	return out
}
