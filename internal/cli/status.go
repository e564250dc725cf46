package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqlab/biolapse/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and capture history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stateStore, j, err := openReadOnly(cfg)
		if err != nil {
			return err
		}
		defer j.Close()

		st, err := stateStore.Load()
		if err != nil {
			if errors.Is(err, store.ErrNotInitialized) {
				fmt.Println("No session initialized in this directory.")
				return nil
			}
			return err
		}

		fmt.Printf("Session:    %s\n", st.Session.Name)
		fmt.Printf("Output dir: %s\n", st.Session.OutputDir)
		fmt.Printf("Started:    %s\n", st.Session.StartedAt.Format(time.RFC3339))
		fmt.Printf("Profile:    iso=%d shutter=%dus awb=(%.3f, %.3f)\n",
			st.Profile.ISO, st.Profile.ShutterSpeedUs, st.Profile.GainRed, st.Profile.GainBlue)

		stats, err := j.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Captures:   %d (%d bytes)\n", stats.TotalCaptures, stats.TotalSizeBytes)
		for kind, n := range stats.PerKind {
			fmt.Printf("  %-12s %d\n", kind, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
