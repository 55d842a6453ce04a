// Package vehicle describes the car this controller is attached to: its
// fixed capabilities, how its buses are wired, and the decoded per-tick
// snapshot handed over by the bus decoder.
package vehicle

const (
	KphToMs = 1 / 3.6
	MsToKph = 3.6
	MphToMs = 0.44704
	MsToMph = 1 / MphToMs
)

// Fingerprint identifies a vehicle variant.
type Fingerprint string

const (
	HyundaiGenesis Fingerprint = "HYUNDAI GENESIS 2015-2016"
	GenesisG80     Fingerprint = "GENESIS G80 2017"
	GenesisG90     Fingerprint = "GENESIS G90 2017"
	Sonata         Fingerprint = "HYUNDAI SONATA 2020"
	SonataHybrid   Fingerprint = "HYUNDAI SONATA HYBRID 2020"
	SonataTurbo    Fingerprint = "HYUNDAI SONATA TURBO 2020"
	Palisade       Fingerprint = "HYUNDAI PALISADE 2020"
	SantaFe        Fingerprint = "HYUNDAI SANTA FE LIMITED 2019"
	Grandeur       Fingerprint = "HYUNDAI GRANDEUR IG 2017"
	Elantra        Fingerprint = "HYUNDAI ELANTRA LIMITED ULTIMATE 2017"
	Kona           Fingerprint = "HYUNDAI KONA 2019"
	KonaEV         Fingerprint = "HYUNDAI KONA ELECTRIC 2019"
	Ioniq          Fingerprint = "HYUNDAI IONIQ HYBRID 2017-2019"
	KiaOptima      Fingerprint = "KIA OPTIMA SX 2019"
	KiaStinger     Fingerprint = "KIA STINGER GT2 2018"
	KiaSorento     Fingerprint = "KIA SORENTO GT LINE 2018"
	KiaNiroEV      Fingerprint = "KIA NIRO EV 2020"
)

// Known reports whether f is one of the listed variants.
func (f Fingerprint) Known() bool {
	for _, k := range knownFingerprints {
		if k == f {
			return true
		}
	}
	return false
}

var knownFingerprints = []Fingerprint{
	HyundaiGenesis, GenesisG80, GenesisG90,
	Sonata, SonataHybrid, SonataTurbo, Palisade, SantaFe, Grandeur,
	Elantra, Kona, KonaEV, Ioniq,
	KiaOptima, KiaStinger, KiaSorento, KiaNiroEV,
}

// GenesisFamily reports whether the cluster uses the Genesis lane
// departure encoding.
func (f Fingerprint) GenesisFamily() bool {
	return f == HyundaiGenesis || f == GenesisG80 || f == GenesisG90
}

// SendsLFAMFA reports whether the variant has the LFA/HDA cluster message.
func (f Fingerprint) SendsLFAMFA() bool {
	switch f {
	case Sonata, SonataHybrid, Palisade, SantaFe, Grandeur, KiaNiroEV:
		return true
	}
	return false
}

// LaneModeUSM reports whether LKAS11 carries the lane mode fields.
func (f Fingerprint) LaneModeUSM() bool {
	return f == Sonata || f == SonataHybrid || f == Palisade
}

// SteerLimits bound the torque command. The values are an external safety
// contract shared with the panda firmware.
type SteerLimits struct {
	Max              float64 `yaml:"max"`
	DeltaUp          float64 `yaml:"delta_up"`
	DeltaDown        float64 `yaml:"delta_down"`
	DriverAllowance  float64 `yaml:"driver_allowance"`
	DriverMultiplier float64 `yaml:"driver_multiplier"`
	DriverFactor     float64 `yaml:"driver_factor"`
}

func DefaultSteerLimits() SteerLimits {
	return SteerLimits{
		Max:              255,
		DeltaUp:          3,
		DeltaDown:        7,
		DriverAllowance:  50,
		DriverMultiplier: 2,
		DriverFactor:     1,
	}
}

// CarParams is the capability and calibration record for one vehicle.
type CarParams struct {
	Fingerprint   Fingerprint
	MassKg        float64
	WheelbaseM    float64
	SteerRatio    float64
	MinSteerSpeed float64 // m/s
	Steer         SteerLimits

	MDPSBus     int
	SASBus      int
	SCCBus      int // -1: radar not on CAN
	RadarOffCan bool
	// LongitudinalControl is true when this controller sends SCC11/SCC12.
	LongitudinalControl bool

	SPASEnabled bool
}

// ApplyTopology copies detected bus wiring into p and derives the
// longitudinal control flags from it.
func (p *CarParams) ApplyTopology(t Topology) {
	p.MDPSBus = t.MDPSBus
	p.SASBus = t.SASBus
	p.SCCBus = t.SCCBus
	p.RadarOffCan = t.SCCBus == -1
	p.LongitudinalControl = t.SCCBus != 0 && !p.RadarOffCan
}
