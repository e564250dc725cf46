package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initializeCmd = &cobra.Command{
	Use:     "initialize <name>",
	Aliases: []string{"Initialize", "init"},
	Short:   "Start a new session: calibrate, freeze settings, take the sentinel photo",
	Long: `Creates the session directory <name> under the working directory, lets the
camera's exposure and white balance converge, freezes the resulting
calibration to disk, and captures Initial.png under illumination. Every
later capture replays the frozen calibration unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRig(cfg)
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Println("Initializing...")
		fmt.Println("Taking Photo")
		if err := r.machine.Initialize(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Initialized")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initializeCmd)
}
