package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var endCmd = &cobra.Command{
	Use:     "end",
	Aliases: []string{"End"},
	Short:   "Stop the time course",
	Long: `Removes every cron entry for this program. The frozen calibration and
session directory are left intact, so a later plain capture still works.
Safe to call at any time, including when no time course is running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRig(cfg)
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Println("Ending Time Course")
		if err := r.machine.End(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(endCmd)
}
