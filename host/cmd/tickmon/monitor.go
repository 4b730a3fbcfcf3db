package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"pitclock/host/monitor"
	"pitclock/host/serial"
)

var (
	monitorOpts = struct {
		device   string
		baud     int
		duration time.Duration
	}{}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Decode timer_stats reports from a serial console",
		Long:  "Read timer_stats frames from a target's serial console, print each report and estimate the tick rate.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := serial.DefaultConfig(monitorOpts.device)
			cfg.Baud = monitorOpts.baud

			mon, err := monitor.Connect(cfg)
			if err != nil {
				return err
			}
			defer mon.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if monitorOpts.duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, monitorOpts.duration)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Monitoring %s at %d baud...\n", cfg.Device, cfg.Baud)
			err = mon.Run(ctx, func(s monitor.Sample) { printSample(out, s) })
			if err != nil {
				return err
			}
			return printEstimate(out, mon)
		},
	}
)

func init() {
	monitorCmd.Flags().StringVarP(&monitorOpts.device, "device", "d", "/dev/ttyS0", "serial device path")
	monitorCmd.Flags().IntVarP(&monitorOpts.baud, "baud", "b", 250000, "baud rate")
	monitorCmd.Flags().DurationVar(&monitorOpts.duration, "duration", 0, "stop after this long (0 = until interrupted)")
}

func printEstimate(w io.Writer, mon *monitor.Monitor) error {
	est, err := mon.Estimate()
	if errors.Is(err, monitor.ErrNotEnoughSamples) {
		fmt.Fprintf(w, "Not enough reports for a rate estimate (%d received)\n", len(mon.Samples()))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Tick rate: %.3f Hz (+/- %.3f) over %d intervals, nominal %d Hz, %+.0f ppm\n",
		est.Mean, est.StdDev, est.Intervals, est.Nominal, est.PPM)
	if n := mon.Errors(); n > 0 {
		fmt.Fprintf(w, "Corrupt frames skipped: %d\n", n)
	}
	return nil
}
