package vehicle

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the on-disk description of a vehicle.
type Profile struct {
	Fingerprint   Fingerprint  `yaml:"fingerprint"`
	MassKg        float64      `yaml:"mass_kg"`
	WheelbaseM    float64      `yaml:"wheelbase_m"`
	SteerRatio    float64      `yaml:"steer_ratio"`
	MinSteerSpeed float64      `yaml:"min_steer_speed_ms"`
	Steer         *SteerLimits `yaml:"steer_limits"`

	// Buses is either given directly or detected from Fingerprints.
	Buses        *Topology        `yaml:"buses"`
	Fingerprints map[int][]uint32 `yaml:"bus_fingerprint"`

	SPAS         bool `yaml:"spas"`
	BlinkerLatch bool `yaml:"blinker_flash_only"`

	Tuning Tuning `yaml:"tuning"`
}

// Tuning overrides controller policy defaults. Unset fields keep the
// default.
type Tuning struct {
	SpeedControl   *bool    `yaml:"speed_control"`
	LKASButtonOn   *bool    `yaml:"lkas_button_on"`
	SPASAlways     *bool    `yaml:"spas_always"`
	FollowGapRatio *float64 `yaml:"follow_gap_ratio"`
	SafetyDiff     *float64 `yaml:"safety_diff_kph"`
}

// LoadProfile reads and validates a YAML vehicle profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := ParseProfile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a profile, rejecting unknown keys.
func ParseProfile(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if !p.Fingerprint.Known() {
		return fmt.Errorf("unknown fingerprint %q", p.Fingerprint)
	}
	if p.Buses != nil && p.Fingerprints != nil {
		return fmt.Errorf("buses and bus_fingerprint are mutually exclusive")
	}
	for bus := range p.Fingerprints {
		if bus < 0 || bus > 2 {
			return fmt.Errorf("bus_fingerprint: invalid bus %d", bus)
		}
	}
	if b := p.Buses; b != nil {
		if b.MDPSBus < 0 || b.MDPSBus > 2 || b.SASBus < 0 || b.SASBus > 2 {
			return fmt.Errorf("buses: mdps/sas bus must be 0..2")
		}
		if b.SCCBus < -1 || b.SCCBus > 2 {
			return fmt.Errorf("buses: scc bus must be -1..2, got %d", b.SCCBus)
		}
	}
	if r := p.Tuning.FollowGapRatio; r != nil && (*r <= 0 || *r > 2) {
		return fmt.Errorf("tuning: follow_gap_ratio must be in (0, 2], got %g", *r)
	}
	if s := p.Steer; s != nil && (s.Max <= 0 || s.DeltaUp <= 0 || s.DeltaDown <= 0) {
		return fmt.Errorf("steer_limits: max, delta_up and delta_down must be positive")
	}
	return nil
}

// Topology returns the configured or detected bus wiring.
func (p *Profile) Topology() Topology {
	if p.Buses != nil {
		return *p.Buses
	}
	var fp BusFingerprint
	for bus, ids := range p.Fingerprints {
		fp[bus] = make(map[uint32]int, len(ids))
		for _, id := range ids {
			fp[bus][id] = 8
		}
	}
	return DetectTopology(fp)
}

// CarParams builds the capability record.
func (p *Profile) CarParams() CarParams {
	cp := CarParams{
		Fingerprint:   p.Fingerprint,
		MassKg:        p.MassKg,
		WheelbaseM:    p.WheelbaseM,
		SteerRatio:    p.SteerRatio,
		MinSteerSpeed: p.MinSteerSpeed,
		Steer:         DefaultSteerLimits(),
		SPASEnabled:   p.SPAS,
	}
	if p.Steer != nil {
		cp.Steer = *p.Steer
	}
	cp.ApplyTopology(p.Topology())
	return cp
}
