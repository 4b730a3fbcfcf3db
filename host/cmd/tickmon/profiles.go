package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pitclock/core"
	"pitclock/sim"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in simulation profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s %6s %8s %9s  %s\n", "NAME", "HZ", "DIVISOR", "FEEDBACK", "THREADS")
		for _, p := range sim.Profiles() {
			threads := make([]string, len(p.Threads))
			for i, th := range p.Threads {
				threads[i] = fmt.Sprintf("%s(%+d)", th.Name, th.Nice)
			}
			fmt.Fprintf(out, "%-10s %6d %8d %9v  %s\n",
				p.Name, p.Frequency, core.PITDivisor(p.Frequency), p.Feedback, strings.Join(threads, " "))
		}
	},
}
