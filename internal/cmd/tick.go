package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Instantiate this week's routine tasks for all registered artists",
	Long: `Tick runs one pass of the weekly routine scheduler: every artist
routine in the registry gets its template applied for the current ISO
week, unless that week's batch already exists. Running tick repeatedly
within the same week is a no-op.`,
	RunE: runTick,
}

func init() {
	rootCmd.AddCommand(tickCmd)
}

func runTick(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Scheduler.Tick(cmd.Context(), time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Printf("Cycle %s: %d routine(s) applied, %d already up to date, %d task(s) created\n",
		result.CycleKey, result.Applied, result.UpToDate, result.Created)
	return nil
}
