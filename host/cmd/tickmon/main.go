// Command tickmon simulates the PIT tick subsystem on the host and monitors
// timer_stats reports from a target's serial console.
package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"pitclock/core"
	"pitclock/host/monitor"
	"pitclock/protocol"
)

var rootCmd = &cobra.Command{
	Use:           "tickmon",
	Short:         "PIT tick simulator and stats monitor",
	Long:          "Run the timer tick subsystem against simulated hardware, or decode timer_stats frames from a target console.",
	Version:       protocol.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(simulateCmd, monitorCmd, profilesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// lockedWriter serialises console lines from the thread and the async debug worker
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) println(s string) {
	l.mu.Lock()
	fmt.Fprintln(l.w, s)
	l.mu.Unlock()
}

// installConsole routes core console output to w. A halt exits the process.
func installConsole(w io.Writer) {
	console := &lockedWriter{w: w}
	core.SetDebugWriter(console.println)
	core.SetHaltHandler(func(string) {
		os.Exit(2)
	})
}

func printSample(w io.Writer, s monitor.Sample) {
	st := s.Stats
	fmt.Fprintf(w, "#%-2d ticks=%-8d freq=%-4d loops/tick=%-10d prio=%-6d load=%-4d wake=%-4d busy=%d\n",
		s.Sequence, st.Ticks, st.Frequency, st.LoopsPerTick,
		st.PriorityRecomputes, st.LoadAvgUpdates, st.Wakeups, st.BusyWaits)
}
