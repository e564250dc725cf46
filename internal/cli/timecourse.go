package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var timecourseCmd = &cobra.Command{
	Use:     "timecourse <interval-minutes>",
	Aliases: []string{"TimeCourse"},
	Short:   "Schedule recurring captures and take the first one",
	Long: `Installs a cron entry that re-invokes this program every <interval-minutes>
minutes, anchored to the current minute of the hour, then takes one photo
with the frozen calibration. Calling it again replaces the previous entry;
it never accumulates duplicates. Requires a prior initialize.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("interval must be an integer number of minutes, got %q", args[0])
		}

		r, err := openRig(cfg)
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Println("Scheduling CRON Job")
		fmt.Println("Taking Photo")
		path, err := r.machine.StartTimeCourse(cmd.Context(), interval)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		fmt.Println("Time Course Active")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(timecourseCmd)
}
