// Package carcontroller turns one tick of planner output and vehicle state
// into the ordered set of logical CAN messages for that tick.
package carcontroller

import (
	"math"

	"scc-control-core/closed_loop/canmsg"
	"scc-control-core/closed_loop/hud"
	lateral "scc-control-core/closed_loop/lateral_control"
	control "scc-control-core/closed_loop/longitudinal_control"
	"scc-control-core/closed_loop/vehicle"
	"scc-control-core/utils"
)

// Inputs is the read-only view for one tick.
type Inputs struct {
	Enabled     bool
	CarState    *vehicle.CarState
	Actuators   vehicle.Actuators
	Cancel      bool
	VisualAlert hud.VisualAlert

	LeftLane    bool
	RightLane   bool
	LeftDepart  bool
	RightDepart bool

	SetSpeed    float64 // m/s, planner cruise speed
	LeadVisible bool
	Model       vehicle.ModelFeed
}

// Output is what one tick produced.
type Output struct {
	Messages []canmsg.Message

	Accel            float64
	ApplySteer       float64
	SteerRateLimited bool
	LKASActive       bool
	SPASActive       bool
	Resumed          bool

	// Decided is false on ticks the speed policy was not consulted.
	Decided    bool
	Decision   control.Decision
	DebugStep  int
	ModelSpeed float64
	Pending    canmsg.Button
	ButtonSent bool
}

type Controller struct {
	cfg    Config
	params vehicle.CarParams
	policy *control.Engine
	log    *utils.Logger

	State State
}

// New builds a controller for one vehicle. log may be nil.
func New(params vehicle.CarParams, cfg Config, log *utils.Logger) *Controller {
	return &Controller{
		cfg:    cfg,
		params: params,
		policy: control.NewEngine(cfg.Policy),
		log:    log,
		State:  newState(),
	}
}

// Policy exposes the speed policy engine and its state.
func (c *Controller) Policy() *control.Engine { return c.policy }

func (c *Controller) Params() vehicle.CarParams { return c.params }

// Update runs one control tick. It must be called exactly once per tick with
// increasing tick numbers starting at 0.
func (c *Controller) Update(tick int, in Inputs) Output {
	cs := in.CarState
	st := &c.State
	p := &c.params
	var out Output

	vEgoKph := cs.VEgo * vehicle.MsToKph
	lead := in.Model.Lead.Resolve()

	out.Accel = c.accel(in.Actuators)

	target := in.Actuators.Steer * p.Steer.Max
	applySteer, limited := lateral.LimitTorque(target, st.LastAppliedSteer, cs.SteeringTorque, p.Steer)
	st.SteerRateLimited = limited
	out.SteerRateLimited = limited

	if p.SPASEnabled {
		st.SPAS.Slew(in.Actuators.SteerAngle, c.cfg.SPASMaxRate)
		out.SPASActive = in.Enabled && (c.cfg.SPASAlways || cs.VEgo < c.cfg.SPASMaxSpeed)
	}

	out.LKASActive = c.lateralActive(in.Enabled, cs, out.SPASActive)
	if !out.LKASActive {
		applySteer = 0
	}
	st.LastAppliedSteer = applySteer
	out.ApplySteer = applySteer

	lane := hud.Derive(hud.Input{
		Active:       out.LKASActive,
		Fingerprint:  p.Fingerprint,
		Alert:        in.VisualAlert,
		LeftLane:     in.LeftLane,
		RightLane:    in.RightLane,
		LeftDepart:   in.LeftDepart,
		RightDepart:  in.RightDepart,
		LKASToggleOn: c.cfg.LKASButtonOn,
	})

	enabledSpeed := c.cfg.EnabledSpeedKph
	if cs.SpeedInMph {
		enabledSpeed = c.cfg.EnabledSpeedMph
	}
	if cs.ClusterSpeed > enabledSpeed || !out.LKASActive {
		enabledSpeed = cs.ClusterSpeed
	}

	if tick == 0 {
		scc := 0
		if !p.RadarOffCan {
			scc = int(cs.SCC12.Get("CR_VSM_Alive")) + 1
		}
		st.Counters.Seed(int(cs.LKAS11.Get("CF_Lkas_MsgCount")), scc)
	}

	cancel := in.Cancel && p.LongitudinalControl
	if !cancel && in.Enabled && cs.Standstill &&
		cs.LeadDistance > c.cfg.ResumeMinLeadDist &&
		tick-st.LastResumeTick > c.cfg.ResumeIntervalTicks {
		out.Resumed = true
		st.LastResumeTick = tick
	}

	out.ModelSpeed = c.policy.ModelSpeed(in.Model.PathPoly, cs.VEgo)
	c.bridgeSpeedButton(tick, vEgoKph, cs, lead, &out)
	if cancel && st.Button.Pending != canmsg.ButtonNone {
		c.log.Debug("tick=%d cancel drops %s", tick, st.Button.Pending)
		st.Button.release(c.cfg.ButtonResetWait)
		out.ButtonSent = false
	}

	if p.SPASEnabled && canmsg.SPASStatusDue(tick) {
		st.SPAS.Advance(out.SPASActive, cs.MDPSStatus, cs.MDPSSteerAngle)
	}

	plan := canmsg.Plan{
		Tick: tick,
		Topology: canmsg.Topology{
			MDPSBus:     p.MDPSBus,
			SCCBus:      p.SCCBus,
			SCCLive:     !p.RadarOffCan,
			LongControl: p.LongitudinalControl,
		},
		Variant: canmsg.Variant{
			LFAMFA:      p.Fingerprint.SendsLFAMFA(),
			LaneModeUSM: p.Fingerprint.LaneModeUSM(),
			HasSCC13:    cs.HasSCC13,
			HasSCC14:    cs.HasSCC14,
			SPASFitted:  p.SPASEnabled,
		},
		Echo: cs.Echo(),

		Enabled:    in.Enabled,
		ApplySteer: applySteer,
		LKASActive: out.LKASActive,
		HUD: canmsg.LaneHUD{
			SysWarning:  lane.Warning,
			SysState:    lane.LaneState,
			LeftLane:    in.LeftLane,
			RightLane:   in.RightLane,
			LeftDepart:  lane.LeftSeverity,
			RightDepart: lane.RightSeverity,
		},

		ClusterSpeed: cs.ClusterSpeed,
		EnabledSpeed: enabledSpeed,
		Cancel:       cancel,
		Resume:       out.Resumed,

		SpeedButton:     st.Button.Pending,
		SpeedButtonSpd:  st.Button.PendingSpeed,
		SendSpeedButton: out.ButtonSent,

		Accel:       out.Accel,
		SetSpeed:    c.clusterSetSpeed(in.SetSpeed, cs.SpeedInMph),
		LeadVisible: in.LeadVisible,

		SPASActive: out.SPASActive,
		SPASState:  int(st.SPAS.Stage),
		SPASAngle:  st.SPAS.AppliedAngle,
	}

	out.Messages = canmsg.Schedule(&plan, &st.Counters)
	out.DebugStep = c.policy.State.DebugStep
	out.Pending = st.Button.Pending
	return out
}

func (c *Controller) accel(a vehicle.Actuators) float64 {
	var accel float64
	accel, c.State.AccelSteady = control.AccelHysteresis(a.Gas-a.Brake, c.State.AccelSteady, c.cfg.AccelHystGap)
	scale := math.Max(c.cfg.AccelMax, -c.cfg.AccelMin)
	return control.ClampFloat(accel*scale, c.cfg.AccelMin, c.cfg.AccelMax)
}

// lateralActive gates torque steering and runs the turn signal timer.
func (c *Controller) lateralActive(enabled bool, cs *vehicle.CarState, spasActive bool) bool {
	st := &c.State
	active := enabled && c.cfg.LKASButtonOn && !spasActive

	if cs.VEgo < c.cfg.GenesisFaultSpeed && c.params.Fingerprint == vehicle.HyundaiGenesis && c.params.MDPSBus == 0 {
		active = false
	}

	blinker := cs.LeftBlinker || cs.RightBlinker || cs.LeftBlinkerFlash || cs.RightBlinkerFlash
	if (blinker || st.TurnSignalTimer > 0) && cs.VEgo < c.cfg.TurnSignalSpeed {
		active = false
	}
	if blinker {
		st.TurnSignalTimer = c.cfg.TurnSignalHold
	}
	if st.TurnSignalTimer > 0 {
		st.TurnSignalTimer--
	}
	return active
}

// clusterSetSpeed bounds the planner set speed and converts it to the
// cluster's unit.
func (c *Controller) clusterSetSpeed(setSpeed float64, mph bool) float64 {
	if !(c.cfg.MinSetSpeed < setSpeed && setSpeed < c.cfg.MaxSetSpeed) {
		setSpeed = c.cfg.MinSetSpeed
	}
	if mph {
		return setSpeed * vehicle.MsToMph
	}
	return setSpeed * vehicle.MsToKph
}

// bridgeSpeedButton consults the speed policy and holds its button presses.
func (c *Controller) bridgeSpeedButton(tick int, vEgoKph float64, cs *vehicle.CarState, lead vehicle.Lead, out *Output) {
	b := &c.State.Button

	switch {
	case cs.DriverOverride == vehicle.OverrideBrake || !cs.CruiseAvail ||
		cs.CruiseSwState == vehicle.CruiseSwResAccel || cs.CruiseSwState == vehicle.CruiseSwSetDecel:
		b.release(c.cfg.ButtonResetWait)
		return
	case b.WaitTicks > 0:
		b.WaitTicks--
		return
	case !c.cfg.SpeedControlEnabled || cs.CruiseSetMode == 0:
		b.release(0)
		return
	}

	d := c.policy.Decide(vEgoKph, cs, lead, out.ModelSpeed)
	out.Decided = true
	out.Decision = d
	if c.log.Enabled(utils.TRACE) {
		c.log.Trace("tick=%d target=%.0f vset=%.0f clu=%.0f timer=%d hold=%d step=%d lead=%.1fm/%.1fm/%dkph",
			tick, d.TargetSpeed, cs.VSetDis, cs.ClusterSpeed, c.policy.State.CurveTimer, d.Hold,
			c.policy.State.DebugStep, lead.DRel, lead.YRel, lead.VRelKph)
	}

	switch {
	case cs.ClusterSpeed < c.cfg.MinButtonSpeed:
		b.Pending = canmsg.ButtonNone
	case b.Pending != canmsg.ButtonNone:
		// already holding a press
	case d.Button != canmsg.ButtonNone:
		b.latch(d.Button, d.TargetSpeed)
		c.log.Debug("tick=%d latch %s speed=%.0f rule=%d", tick, d.Button, d.TargetSpeed, d.LeadCode)
	}

	if b.Pending == canmsg.ButtonNone {
		return
	}
	b.ActiveTicks++
	if b.ActiveTicks > c.cfg.ButtonHold {
		c.log.Debug("tick=%d release %s after %d presses", tick, b.Pending, b.PressCount)
		b.release(c.cfg.ButtonCooldown)
		return
	}
	if cs.CruiseSet || (cs.CruiseSetMode == 3 && cs.ClusterSpeed > c.cfg.AutoSetSpeed) {
		out.ButtonSent = true
	}
	b.PressCount++
}
