package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"scc-control-core/closed_loop/carcontroller"
	"scc-control-core/closed_loop/hud"
	"scc-control-core/closed_loop/vehicle"
)

// Scenario defines a complete replay: a default input bundle and time
// segments that override parts of it.
type Scenario struct {
	Meta     ScenarioMeta      `json:"meta"`
	Timing   ScenarioTiming    `json:"timing"`
	Defaults TickInputs        `json:"defaults"`
	Segments []ScenarioSegment `json:"segments"`
}

// ScenarioMeta contains scenario metadata
type ScenarioMeta struct {
	Name        string `json:"name"`
	Version     int    `json:"version"`
	Description string `json:"description"`
}

// ScenarioTiming defines timing parameters
type ScenarioTiming struct {
	DtS       float64 `json:"dt_s"`
	DurationS float64 `json:"duration_s"`
}

// ScenarioSegment overrides the defaults between T0 and T1. T1 < 0 runs to
// the end of the scenario. Inputs is a partial TickInputs object.
type ScenarioSegment struct {
	T0      float64         `json:"t0"`
	T1      float64         `json:"t1"`
	Inputs  json.RawMessage `json:"inputs"`
	Comment string          `json:"comment,omitempty"`

	resolved TickInputs
}

// TickInputs is the scenario form of one tick's controller inputs.
type TickInputs struct {
	Enabled     bool    `json:"enabled"`
	Cancel      bool    `json:"cancel"`
	VisualAlert int     `json:"visual_alert"`
	LeftLane    bool    `json:"left_lane"`
	RightLane   bool    `json:"right_lane"`
	LeftDepart  bool    `json:"left_depart"`
	RightDepart bool    `json:"right_depart"`
	SetSpeed    float64 `json:"set_speed_ms"`
	LeadVisible bool    `json:"lead_visible"`

	CarState  vehicle.CarState  `json:"car_state"`
	Actuators vehicle.Actuators `json:"actuators"`
	Model     vehicle.ModelFeed `json:"model"`
}

const defaultDtS = 0.01

// LoadScenario loads a scenario from JSON file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	scen, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scen, nil
}

// ParseScenario decodes and validates a scenario and resolves each segment
// against the defaults.
func ParseScenario(data []byte) (*Scenario, error) {
	var scen Scenario
	if err := decodeStrict(data, &scen); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if scen.Timing.DurationS <= 0 {
		return nil, fmt.Errorf("invalid duration_s: %f", scen.Timing.DurationS)
	}
	if scen.Timing.DtS == 0 {
		scen.Timing.DtS = defaultDtS
	}
	if scen.Timing.DtS < 0 || scen.Timing.DtS > scen.Timing.DurationS {
		return nil, fmt.Errorf("invalid dt_s: %f", scen.Timing.DtS)
	}

	base, err := json.Marshal(scen.Defaults)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	for i := range scen.Segments {
		seg := &scen.Segments[i]
		if seg.T1 >= 0 && seg.T1 <= seg.T0 {
			return nil, fmt.Errorf("segment %d: t1 %.3f not after t0 %.3f", i, seg.T1, seg.T0)
		}
		// Decoding the defaults afresh gives each segment its own maps.
		if err := decodeStrict(base, &seg.resolved); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if len(seg.Inputs) > 0 {
			if err := decodeStrict(seg.Inputs, &seg.resolved); err != nil {
				return nil, fmt.Errorf("segment %d inputs: %w", i, err)
			}
		}
	}
	return &scen, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Ticks is the number of control ticks the scenario runs for.
func (s *Scenario) Ticks() int {
	return int(s.Timing.DurationS/s.Timing.DtS + 0.5)
}

// InputsAt returns the input bundle active at time t. The first segment
// covering t wins.
func (s *Scenario) InputsAt(t float64) TickInputs {
	for i := range s.Segments {
		seg := &s.Segments[i]
		t1 := seg.T1
		if t1 < 0 {
			t1 = s.Timing.DurationS
		}
		if t >= seg.T0 && t < t1 {
			return seg.resolved
		}
	}
	return s.Defaults
}

// Controller converts the bundle into controller inputs. cs must point at a
// copy owned by the caller for the tick.
func (in *TickInputs) Controller(cs *vehicle.CarState) carcontroller.Inputs {
	return carcontroller.Inputs{
		Enabled:     in.Enabled,
		CarState:    cs,
		Actuators:   in.Actuators,
		Cancel:      in.Cancel,
		VisualAlert: hud.VisualAlert(in.VisualAlert),
		LeftLane:    in.LeftLane,
		RightLane:   in.RightLane,
		LeftDepart:  in.LeftDepart,
		RightDepart: in.RightDepart,
		SetSpeed:    in.SetSpeed,
		LeadVisible: in.LeadVisible,
		Model:       in.Model,
	}
}
