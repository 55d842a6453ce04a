package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"scc-control-core/utils"
)

type cliFlags struct {
	buses    [3]string
	mapPath  string
	profile  string
	scenario string
	logLevel string
	logFile  string
	record   string
	ticks    int
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	var f cliFlags

	root := &cobra.Command{
		Use:           "sccctl",
		Short:         "Hyundai/Kia LKAS and SCC control core",
		Long:          "sccctl replays a scenario through the frame cycle controller and sends the resulting frames over SocketCAN.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.mapPath, "map", envOr("SCC_MAP", "config/can/hkg_can_map.csv"), "Path to the CAN map CSV")
	pf.StringVar(&f.profile, "profile", envOr("SCC_PROFILE", "config/vehicles/sonata_2020.yaml"), "Vehicle profile YAML")
	pf.StringVar(&f.scenario, "scenario", envOr("SCC_SCENARIO", "config/scenarios/lead_follow_highway.json"), "Scenario JSON file")
	pf.StringVar(&f.logLevel, "log", envOr("SCC_LOG", "info"), "trace|debug|info|warn|error|critical")
	pf.StringVar(&f.logFile, "log-file", envOr("SCC_LOG_FILE", "closed_loop.log"), "Log file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Replay the scenario onto SocketCAN",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReplay(cmd.Context(), &f)
		},
	}
	runCmd.Flags().StringVar(&f.buses[0], "bus0", envOr("SCC_BUS0", "vcan0"), "SocketCAN interface for bus 0")
	runCmd.Flags().StringVar(&f.buses[1], "bus1", envOr("SCC_BUS1", ""), "SocketCAN interface for bus 1")
	runCmd.Flags().StringVar(&f.buses[2], "bus2", envOr("SCC_BUS2", ""), "SocketCAN interface for bus 2")
	runCmd.Flags().StringVar(&f.record, "record", envOr("SCC_RECORD", ""), "SQLite trace file prefix (empty to disable)")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the frame schedule without touching a bus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, &f)
		},
	}
	planCmd.Flags().IntVar(&f.ticks, "ticks", 100, "Number of ticks to print (0 for the whole scenario)")

	root.AddCommand(runCmd, planCmd)
	return root
}

func (f *cliFlags) runnerConfig() RunnerConfig {
	return RunnerConfig{
		Interfaces:   f.buses[:],
		MapPath:      f.mapPath,
		ProfilePath:  f.profile,
		ScenarioPath: f.scenario,
		RecordPrefix: f.record,
	}
}

func runReplay(ctx context.Context, f *cliFlags) error {
	log, err := utils.NewFileLogger(f.logFile, utils.ParseLevel(f.logLevel), true)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", f.logFile, err)
	}
	defer log.Close()

	runner, err := NewRunner(ctx, f.runnerConfig(), log)
	if err != nil {
		log.Critical("Startup failed: %v", err)
		return err
	}
	defer runner.Close()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Critical("Run failed: %v", err)
		return err
	}
	return nil
}

func runPlan(cmd *cobra.Command, f *cliFlags) error {
	log, err := utils.NewFileLogger(f.logFile, utils.ParseLevel(f.logLevel), false)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", f.logFile, err)
	}
	defer log.Close()

	setup, err := LoadSetup(f.runnerConfig())
	if err != nil {
		return err
	}
	r := newRunner(setup, utils.BusWriters{}, nil, log)

	n := setup.Scenario.Ticks()
	if f.ticks > 0 && f.ticks < n {
		n = f.ticks
	}
	w := cmd.OutOrStdout()
	for i := 0; i < n; i++ {
		out, err := r.Step(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "tick %5d accel=%+.2f steer=%+4.0f step=%d pending=%s\n",
			i, out.Accel, out.ApplySteer, out.DebugStep, out.Pending)
		for _, m := range out.Messages {
			fmt.Fprintf(w, "    %s\n", m)
		}
	}
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = os.Stderr.WriteString("ERROR: .env: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = os.Stderr.WriteString("ERROR: " + err.Error() + "\n")
		stop()
		atexit.Exit(1)
	}
}
