// Warmbed keeps smart bed heating aligned with each user's sleep schedule.
//
// The serve command runs the HTTP API plus a background loop that
// periodically reconciles every profile's desired heating level against the
// device cloud. The reconcile command runs a single pass from the command
// line, optionally at a simulated point in time.
//
// Usage:
//
//	warmbed serve
//	warmbed reconcile [--at 2026-08-27T01:30:00Z]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "warmbed",
	Short: "Sleep-schedule driven bed heating reconciler",
	Long: `Warmbed drives smart bed heating from per-user sleep schedules.

Each profile declares a bed time, a wake time, and optionally a custom list
of temperature stages. Warmbed evaluates the schedule, compares the desired
heating level with what the device cloud reports, and issues the commands
needed to close the gap.`,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
