// Package canmsg turns one tick of control decisions into the ordered list of
// logical bus messages, keeping the rolling counters the receivers check.
package canmsg

import (
	"fmt"
	"sort"
)

// Kind names a logical message. It matches the frame name in the CAN map.
type Kind string

const (
	KindLKAS11 Kind = "LKAS11"
	KindCLU11  Kind = "CLU11"
	KindMDPS12 Kind = "MDPS12"
	KindSCC11  Kind = "SCC11"
	KindSCC12  Kind = "SCC12"
	KindSCC13  Kind = "SCC13"
	KindSCC14  Kind = "SCC14"
	KindLFAHDA Kind = "LFAHDA_MFC"
	KindEMS11  Kind = "EMS11"
	KindSPAS11 Kind = "SPAS11"
	KindSPAS12 Kind = "SPAS12"
)

// AllKinds lists every kind the scheduler can emit.
var AllKinds = []Kind{
	KindLKAS11, KindCLU11, KindMDPS12,
	KindSCC11, KindSCC12, KindSCC13, KindSCC14,
	KindLFAHDA, KindEMS11, KindSPAS11, KindSPAS12,
}

// KindNames returns AllKinds as strings, for validating a CAN map.
func KindNames() []string {
	out := make([]string, len(AllKinds))
	for i, k := range AllKinds {
		out[i] = string(k)
	}
	return out
}

// Signals is a field-name to physical-value mapping.
type Signals map[string]float64

// Clone returns a copy that can be modified without touching s. A nil map
// clones to an empty one.
func (s Signals) Clone() Signals {
	out := make(Signals, len(s)+8)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get returns the named field or 0.
func (s Signals) Get(name string) float64 {
	return s[name]
}

// Message is one logical frame: what it is, where it goes, what it carries.
type Message struct {
	Kind   Kind
	Bus    int
	Fields Signals
}

func (m Message) String() string {
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := fmt.Sprintf("%s@%d{", m.Kind, m.Bus)
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%g", k, m.Fields[k])
	}
	return s + "}"
}

// Button is the cruise switch state carried in CLU11.
type Button int

const (
	ButtonNone     Button = 0
	ButtonResAccel Button = 1
	ButtonSetDecel Button = 2
	ButtonGapDist  Button = 3
	ButtonCancel   Button = 4
)

func (b Button) String() string {
	switch b {
	case ButtonNone:
		return "none"
	case ButtonResAccel:
		return "res_accel"
	case ButtonSetDecel:
		return "set_decel"
	case ButtonGapDist:
		return "gap_dist"
	case ButtonCancel:
		return "cancel"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}
