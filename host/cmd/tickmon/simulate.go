package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"pitclock/core"
	"pitclock/host/monitor"
	"pitclock/host/serial"
	"pitclock/sim"
)

var (
	simulateOpts = struct {
		config       string
		profile      string
		frequency    uint32
		duration     time.Duration
		calibrations int
		serial       bool
		debug        bool
	}{}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Run the tick subsystem against a simulated PIT",
		Long: `Program a simulated 8254, calibrate the busy-wait loop, sleep on the
tick counter and decode the timer_stats reports it produces.`,
		Args: cobra.NoArgs,
		RunE: runSimulate,
	}
)

func init() {
	flags := simulateCmd.Flags()
	flags.StringVarP(&simulateOpts.config, "config", "c", "", "YAML simulation config")
	flags.StringVarP(&simulateOpts.profile, "profile", "p", "default", "embedded profile (ignored with --config)")
	flags.Uint32VarP(&simulateOpts.frequency, "frequency", "f", 0, "override the tick frequency in Hz")
	flags.DurationVar(&simulateOpts.duration, "duration", 0, "override the run length")
	flags.IntVar(&simulateOpts.calibrations, "calibrations", 3, "calibration runs used for the spread estimate")
	flags.BoolVar(&simulateOpts.serial, "serial", false, "also write reports to the configured serial device")
	flags.BoolVar(&simulateOpts.debug, "debug", false, "enable timer debug output")
}

func loadSimConfig(cmd *cobra.Command) (*sim.Config, error) {
	var (
		cfg *sim.Config
		err error
	)
	if simulateOpts.config != "" {
		data, readErr := os.ReadFile(simulateOpts.config)
		if readErr != nil {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
		cfg, err = sim.LoadConfig(data)
	} else {
		cfg, err = sim.ProfileConfig(simulateOpts.profile)
	}
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("frequency") {
		cfg.Frequency = simulateOpts.frequency
	}
	if cmd.Flags().Changed("duration") {
		cfg.Duration = simulateOpts.duration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadSimConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	installConsole(out)
	if simulateOpts.debug {
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
		defer core.StopAsyncDebug()
	}

	fmt.Fprintf(out, "Profile %q: %d Hz (divisor %d), feedback %v, %d threads, %v\n",
		cfg.Profile, cfg.Frequency, core.PITDivisor(cfg.Frequency),
		cfg.Feedback, len(cfg.Threads), cfg.Duration)

	printCalibrationSpread(out, cfg, simulateOpts.calibrations)

	m := sim.NewMachine(cfg)
	m.Start()
	defer m.Stop()
	m.Timer.Calibrate()

	pr, pw := io.Pipe()
	var reports io.Writer = pw
	if simulateOpts.serial {
		portCfg := serial.DefaultConfig(cfg.Device)
		portCfg.Baud = cfg.Baud
		port, err := serial.Open(portCfg)
		if err != nil {
			return err
		}
		defer port.Close()
		reports = io.MultiWriter(pw, port)
	}

	mon := monitor.New(pr)
	monDone := make(chan error, 1)
	go func() {
		monDone <- mon.Run(context.Background(), func(s monitor.Sample) { printSample(out, s) })
	}()

	probe := core.NewDriftProbe(m.Timer, sim.HostClock{})
	if err := probe.Start(); err != nil {
		return err
	}

	reporter := core.NewReporter(m.Timer, reports)
	deadline := time.Now().Add(cfg.Duration)
	for time.Now().Before(deadline) {
		m.Timer.MSleep(cfg.ReportInterval.Milliseconds())
		m.Timer.USleep(250)
		if err := reporter.Report(); err != nil {
			pw.CloseWithError(err)
			<-monDone
			return fmt.Errorf("report: %w", err)
		}
	}
	pw.Close()
	if err := <-monDone; err != nil {
		return err
	}

	if err := printEstimate(out, mon); err != nil {
		return err
	}
	if sample, err := probe.Sample(); err == nil {
		fmt.Fprintf(out, "Host clock: %d ticks in %v, %.3f Hz, %+.0f ppm\n",
			sample.Ticks, sample.Wall.Round(time.Millisecond), sample.Observed, sample.PPM)
	}

	m.Timer.PrintStats()
	printScheduler(out, m.Scheduler)
	if simulateOpts.debug {
		m.Timer.DumpTiming()
	}
	return nil
}

// printCalibrationSpread calibrates n fresh machines and reports the
// spread of loops per tick
func printCalibrationSpread(w io.Writer, cfg *sim.Config, n int) {
	if n < 2 {
		return
	}
	loops := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		m := sim.NewMachine(cfg)
		m.Start()
		m.Timer.Calibrate()
		m.Stop()
		loops = append(loops, float64(m.Timer.LoopsPerTick()))
	}
	mean, std := stat.MeanStdDev(loops, nil)
	fmt.Fprintf(w, "Calibration over %d runs: %.0f loops/tick (+/- %.0f, %.1f%%)\n",
		n, mean, std, 100*std/mean)
}

func printScheduler(w io.Writer, s *sim.Scheduler) {
	counts := s.Counts()
	fmt.Fprintf(w, "Scheduler: %d ticks, %d idle, load avg %.2f\n", counts.Ticks, s.IdleTicks(), s.LoadAvg())
	if s.FeedbackEnabled() {
		fmt.Fprintf(w, "  hooks: increment=%d priority=%d load_avg=%d all=%d\n",
			counts.Increments, counts.Priority, counts.LoadAvg, counts.All)
	}
	for _, th := range s.Threads() {
		fmt.Fprintf(w, "  %-12s nice=%-3d prio=%-2d recent_cpu=%-8.2f ticks=%d\n",
			th.Name, th.Nice, th.Priority, th.RecentCPU, th.Ticks)
	}
}
