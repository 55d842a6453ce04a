package main

import (
	"context"
	"fmt"
	"time"

	"scc-control-core/closed_loop/canmsg"
	"scc-control-core/closed_loop/carcontroller"
	"scc-control-core/closed_loop/recorder"
	"scc-control-core/closed_loop/vehicle"
	"scc-control-core/utils"
)

type RunnerConfig struct {
	Interfaces   []string // indexed by logical bus
	MapPath      string
	ProfilePath  string
	ScenarioPath string
	RecordPrefix string
}

type Runner struct {
	log     *utils.Logger
	cmap    *utils.CANMap
	scen    *Scenario
	ctrl    *carcontroller.Controller
	writers utils.BusWriters
	rec     *recorder.Recorder
	blinker *vehicle.BlinkerLatch

	tick    int
	sent    uint64
	skipped uint64
}

// Setup is everything a runner needs that does not touch a bus.
type Setup struct {
	CANMap   *utils.CANMap
	Profile  *vehicle.Profile
	Scenario *Scenario
}

func LoadSetup(cfg RunnerConfig) (*Setup, error) {
	cmap, err := utils.LoadCANMap(cfg.MapPath)
	if err != nil {
		return nil, fmt.Errorf("load can map: %w", err)
	}
	if err := cmap.Require(canmsg.KindNames()...); err != nil {
		return nil, err
	}

	profile, err := vehicle.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	scen, err := LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	return &Setup{CANMap: cmap, Profile: profile, Scenario: scen}, nil
}

// NewController builds the frame cycle controller for the profile.
func (s *Setup) NewController(log *utils.Logger) *carcontroller.Controller {
	cfg := carcontroller.DefaultConfig().WithTuning(s.Profile.Tuning)
	return carcontroller.New(s.Profile.CarParams(), cfg, log.Named("ctrl"))
}

func NewRunner(ctx context.Context, cfg RunnerConfig, log *utils.Logger) (*Runner, error) {
	setup, err := LoadSetup(cfg)
	if err != nil {
		return nil, err
	}

	writers, err := utils.OpenBusWriters(ctx, cfg.Interfaces)
	if err != nil {
		return nil, err
	}

	var rec *recorder.Recorder
	if cfg.RecordPrefix != "" {
		rec, err = recorder.Open(cfg.RecordPrefix)
		if err != nil {
			_ = writers.Close()
			return nil, fmt.Errorf("recorder: %w", err)
		}
		log.Info("Recording run %s to %s", rec.RunID(), rec.Path())
	}

	return newRunner(setup, writers, rec, log), nil
}

func newRunner(setup *Setup, writers utils.BusWriters, rec *recorder.Recorder, log *utils.Logger) *Runner {
	r := &Runner{
		log:     log,
		cmap:    setup.CANMap,
		scen:    setup.Scenario,
		ctrl:    setup.NewController(log),
		writers: writers,
		rec:     rec,
	}
	if setup.Profile.BlinkerLatch {
		r.blinker = &vehicle.BlinkerLatch{}
	}
	return r
}

func (r *Runner) Close() {
	if r.rec != nil {
		if err := r.rec.Close(); err != nil {
			r.log.Error("Recorder close: %v", err)
		}
	}
	if r.writers != nil {
		_ = r.writers.Close()
	}
}

func (r *Runner) Run(ctx context.Context) error {
	p := r.ctrl.Params()
	r.log.Info("Starting TX: scenario=%s duration=%.2fs dt=%.3fs car=%q buses mdps=%d scc=%d long=%v",
		r.scen.Meta.Name, r.scen.Timing.DurationS, r.scen.Timing.DtS,
		p.Fingerprint, p.MDPSBus, p.SCCBus, p.LongitudinalControl)

	period := time.Duration(r.scen.Timing.DtS * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	total := r.scen.Ticks()
	for {
		select {
		case <-ctx.Done():
			r.log.Warn("Context canceled; stopping TX")
			r.log.Info("Completed TX. ticks=%d frames_sent=%d skipped=%d", r.tick, r.sent, r.skipped)
			return ctx.Err()

		case <-ticker.C:
			if r.tick >= total {
				r.log.Info("Completed TX. ticks=%d frames_sent=%d skipped=%d", r.tick, r.sent, r.skipped)
				return nil
			}
			if _, err := r.Step(ctx); err != nil {
				return err
			}
		}
	}
}

// Step runs and transmits one tick.
func (r *Runner) Step(ctx context.Context) (carcontroller.Output, error) {
	tick := r.tick
	t := float64(tick) * r.scen.Timing.DtS
	in := r.scen.InputsAt(t)
	cs := in.CarState
	if r.blinker != nil {
		r.blinker.Apply(&cs)
	}

	out := r.ctrl.Update(tick, in.Controller(&cs))
	r.tick++

	rows := make([]recorder.MessageRow, 0, len(out.Messages))
	for seq, msg := range out.Messages {
		frame, err := r.cmap.Encode(string(msg.Kind), msg.Fields)
		if err != nil {
			r.log.Error("Encode failed at tick=%d %s: %v", tick, msg.Kind, err)
			return out, fmt.Errorf("tick %d: encode %s: %w", tick, msg.Kind, err)
		}
		rows = append(rows, recorder.MessageRow{
			Tick: tick, Seq: seq, Kind: string(msg.Kind), Bus: msg.Bus, CANID: frame.ID,
		})

		w, ok := r.writers[msg.Bus]
		if !ok {
			r.skipped++
			r.log.Trace("No interface for bus %d; skipping %s", msg.Bus, msg.Kind)
			continue
		}
		if err := w.WriteFrame(ctx, frame); err != nil {
			r.log.Critical("Transmit failed at tick=%d: %v", tick, err)
			return out, fmt.Errorf("tick %d: %w", tick, err)
		}
		r.sent++
		r.log.Trace("TX tick=%d bus=%d id=0x%X len=%d data=% X",
			tick, msg.Bus, frame.ID, frame.Length, frame.Data[:frame.Length])
	}

	if r.rec != nil {
		err := r.rec.Record(recorder.TickRow{
			Tick:        tick,
			DebugStep:   out.DebugStep,
			RateLimited: out.SteerRateLimited,
			Accel:       out.Accel,
			Steer:       out.ApplySteer,
			Pending:     out.Pending.String(),
			Messages:    len(out.Messages),
		}, rows)
		if err != nil {
			return out, fmt.Errorf("tick %d: record: %w", tick, err)
		}
	}
	return out, nil
}
