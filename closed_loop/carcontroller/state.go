package carcontroller

import (
	"scc-control-core/closed_loop/canmsg"
	lateral "scc-control-core/closed_loop/lateral_control"
)

// State is the controller's persistent state. It lives as long as the
// controller and is only mutated by Update.
type State struct {
	AccelSteady      float64
	LastAppliedSteer float64
	SteerRateLimited bool

	Counters        canmsg.Counters
	LastResumeTick  int
	TurnSignalTimer int

	SPAS   lateral.SPASState
	Button ButtonBridge
}

// ButtonBridge holds a speed button press open long enough for the cruise
// module to register it.
type ButtonBridge struct {
	Pending      canmsg.Button
	PendingSpeed float64
	WaitTicks    int
	ActiveTicks  int
	PressCount   int
}

func (b *ButtonBridge) latch(btn canmsg.Button, speed float64) {
	b.Pending = btn
	b.PendingSpeed = speed
	b.ActiveTicks = 0
	b.PressCount = 0
}

// release clears the pending press and waits before the next one.
func (b *ButtonBridge) release(wait int) {
	b.Pending = canmsg.ButtonNone
	b.WaitTicks = wait
	b.ActiveTicks = 0
	b.PressCount = 0
}

func newState() State {
	return State{SPAS: lateral.NewSPASState()}
}
