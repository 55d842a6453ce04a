package vehicle

// Some variants only report a flashing blinker lamp. The latch turns that
// into a steady signal that holds for a short while after the last flash.
const blinkerHoldTicks = 50

type blinkerSide int

const (
	blinkerOff blinkerSide = iota
	blinkerRight
	blinkerLeft
	blinkerHazard
)

// BlinkerLatch derives steady left/right blinker flags from flash signals.
type BlinkerLatch struct {
	side  blinkerSide
	timer int
}

// Update consumes one tick of flash signals.
func (b *BlinkerLatch) Update(leftFlash, rightFlash bool) (left, right bool) {
	switch {
	case leftFlash && rightFlash:
		b.side, b.timer = blinkerHazard, blinkerHoldTicks
	case leftFlash:
		b.side, b.timer = blinkerLeft, blinkerHoldTicks
	case rightFlash:
		b.side, b.timer = blinkerRight, blinkerHoldTicks
	case b.timer == 0:
		b.side = blinkerOff
	}

	on := b.timer > 0
	switch b.side {
	case blinkerHazard:
		left, right = on, on
	case blinkerLeft:
		left = on
	case blinkerRight:
		right = on
	}

	if b.timer > 0 {
		b.timer--
	}
	return left, right
}

// Apply rewrites the snapshot's steady blinker flags from its flash flags.
func (b *BlinkerLatch) Apply(cs *CarState) {
	cs.LeftBlinker, cs.RightBlinker = b.Update(cs.LeftBlinkerFlash, cs.RightBlinkerFlash)
}
