package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chaoscv/internal/config"
	"github.com/san-kum/chaoscv/internal/dynamo"
	"github.com/san-kum/chaoscv/internal/engine"
	"github.com/san-kum/chaoscv/internal/event"
	"github.com/san-kum/chaoscv/internal/integrators"
	"github.com/san-kum/chaoscv/internal/physics"
	"github.com/san-kum/chaoscv/internal/storage"
	"github.com/san-kum/chaoscv/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string

	dt         float64
	calibSteps int
	ticks      int
	speedKnob  float64
	threshKnob float64
	vrange     int
	seed       int64

	column     string
	benchSteps int
)

// main registers the chaoscv commands. The root command launches the front
// panel; subcommands cover headless runs, calibration tables, plots and
// integrator benchmarks.
func main() {
	rootCmd := &cobra.Command{
		Use:   "chaoscv",
		Short: "chaotic control-voltage engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return tui.Run(cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chaoscv", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run headless and record outputs",
		Args:  cobra.ExactArgs(1),
		RunE:  runHeadless,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration timestep")
	runCmd.Flags().IntVar(&calibSteps, "calib-steps", config.DefaultCalibSteps, "calibration iterations")
	runCmd.Flags().IntVar(&ticks, "ticks", 500, "output ticks to record")
	runCmd.Flags().Float64Var(&speedKnob, "speed", 50, "speed knob position (0-100)")
	runCmd.Flags().Float64Var(&threshKnob, "threshold", 50, "threshold knob position (0-100)")
	runCmd.Flags().IntVar(&vrange, "range", engine.MaxOutput, "output voltage range")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "print calibrated bounds for the whole family",
		RunE:  calibrateAll,
	}
	calibrateCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration timestep")
	calibrateCmd.Flags().IntVar(&calibSteps, "steps", config.DefaultCalibSteps, "calibration iterations")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded output column",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "sx", "output column (sx sy sz v1 v2 v3 g4 g5 g6)")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark euler vs rk4 stepping",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 100000, "steps per integrator")
	benchCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration timestep")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list the attractor family",
		Run: func(cmd *cobra.Command, args []string) {
			for _, a := range physics.All(config.DefaultDt) {
				fmt.Println(a.Name())
			}
		},
	}

	rootCmd.AddCommand(runCmd, calibrateCmd, listCmd, plotCmd, benchCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		for _, model := range physics.Names() {
			if cfg := config.GetPreset(model, preset); cfg != nil {
				return cfg, nil
			}
		}
		return nil, fmt.Errorf("unknown preset %q", preset)
	}
	return config.DefaultConfig(), nil
}

// gateCounter tallies gate rising edges so the run summary can report how
// busy each gate was.
type gateCounter struct {
	fired [3]int
	last  [3]bool
}

func (g *gateCounter) SetVoltage(ch int, v float64) {}

func (g *gateCounter) SetGate(ch int, on bool) {
	i := ch - 4
	if on && !g.last[i] {
		g.fired[i]++
	}
	g.last[i] = on
}

// consolePrinter reports calibration progress on stdout.
type consolePrinter struct{}

func (consolePrinter) Calibrating(model string) {
	fmt.Printf("calibrating %s...\n", model)
}

func (consolePrinter) Render(engine.Snapshot) {}

func runHeadless(cmd *cobra.Command, args []string) error {
	a, err := physics.Lookup(args[0], dt)
	if err != nil {
		return err
	}

	queue := event.NewQueue()
	gates := &gateCounter{}
	ctrl := engine.New([]*physics.Attractor{a}, queue, gates, consolePrinter{}, engine.Options{
		Range: vrange,
		Seed:  seed,
	})
	if err := ctrl.Calibrate(calibSteps); err != nil {
		return err
	}
	ctrl.SetPeriodFromKnob(speedKnob)
	ctrl.SetThresholdFromKnob(threshKnob)

	// Scripted clock: one period per tick, no wall-time dependence.
	now := time.Unix(0, 0)
	period := ctrl.Period()
	snaps := make([]engine.Snapshot, 0, ticks)
	for i := 0; i < ticks; i++ {
		now = now.Add(period)
		if ctrl.Tick(now) {
			snaps = append(snaps, ctrl.Snapshot())
		}
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(storage.RunMetadata{
		Model:     args[0],
		Seed:      seed,
		Dt:        dt,
		PeriodMs:  float64(period) / float64(time.Millisecond),
		Threshold: ctrl.Threshold(),
		Range:     ctrl.Range(),
	}, snaps)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d ticks at %v\n", runID, len(snaps), period)
	for i, n := range gates.fired {
		fmt.Printf("gate %d fired %d times\n", i+4, n)
	}
	return nil
}

func calibrateAll(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tAXIS\tMIN\tMAX\tRANGE")

	axes := []string{"x", "y", "z"}
	for _, a := range physics.All(dt) {
		fmt.Fprintf(os.Stderr, "calibrating %s...\n", a.Name())
		queue := event.NewQueue()
		ctrl := engine.New([]*physics.Attractor{a}, queue, nil, nil, engine.Options{})
		if err := ctrl.CalibrateOne(0, calibSteps); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		b := ctrl.Bounds(0)
		for i, axis := range axes {
			note := ""
			if b.Degenerate(i) {
				note = " (degenerate)"
			}
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f%s\n",
				a.Name(), axis, b.Min[i], b.Max[i], b.Range(i), note)
		}
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTICKS\tPERIOD\tRANGE\tWHEN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0fms\t%d\t%s\n",
			run.ID, run.Model, run.Ticks, run.PeriodMs, run.Range,
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	values, err := store.LoadColumn(args[0], column)
	if err != nil {
		return err
	}
	if len(values) < 2 {
		return fmt.Errorf("run %s: not enough data to plot", args[0])
	}

	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(15),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("%s / %s", args[0], column)),
	))
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	a, err := physics.Lookup(args[0], dt)
	if err != nil {
		return err
	}
	m := a.Model()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tELAPSED\tSTEPS/SEC\tFINAL STATE")

	integs := []struct {
		name  string
		integ dynamo.Integrator
	}{
		{"euler", integrators.NewEuler()},
		{"rk4", integrators.NewRK4()},
	}

	for _, it := range integs {
		x := m.InitialState().Clone()
		t := 0.0
		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			x = it.integ.Step(m, x, t, dt)
			t += dt
		}
		elapsed := time.Since(start)
		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t(%.4f, %.4f, %.4f)\n",
			it.name, benchSteps, elapsed.Round(time.Microsecond),
			float64(benchSteps)/elapsed.Seconds(), x[0], x[1], x[2])
	}
	return w.Flush()
}
