package vehicle

// BusFingerprint is the set of message IDs seen on each bus during
// identification, indexed by bus number.
type BusFingerprint [3]map[uint32]int

const (
	msgMDPS12 = 593
	msgSAS11  = 688
	msgSCC11  = 1056
	msgLKAS11 = 1296 // only seen off bus 0 when L-CAN shares that bus
)

// Topology is where each subsystem lives.
type Topology struct {
	MDPSBus int `yaml:"mdps"`
	SASBus  int `yaml:"sas"`
	SCCBus  int `yaml:"scc"`
}

func (fp BusFingerprint) has(bus int, id uint32) bool {
	if fp[bus] == nil {
		return false
	}
	_, ok := fp[bus][id]
	return ok
}

// DetectTopology works out which bus MDPS, SAS and SCC are on. A module seen
// on bus 1 is ignored when LKAS11 is also there, since that means the
// camera's L-CAN is wired to bus 1 and the messages are just relayed.
func DetectTopology(fp BusFingerprint) Topology {
	lcanOnBus1 := fp.has(1, msgLKAS11)
	var t Topology
	if fp.has(1, msgMDPS12) && !lcanOnBus1 {
		t.MDPSBus = 1
	}
	if fp.has(1, msgSAS11) && !lcanOnBus1 {
		t.SASBus = 1
	}
	switch {
	case fp.has(0, msgSCC11):
		t.SCCBus = 0
	case fp.has(1, msgSCC11) && !lcanOnBus1:
		t.SCCBus = 1
	case fp.has(2, msgSCC11):
		t.SCCBus = 2
	default:
		t.SCCBus = -1
	}
	return t
}
