package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqlab/biolapse/internal/config"
	"github.com/seqlab/biolapse/internal/debug"
)

var (
	cfgPath string
	cfg     *config.Config
)

// rootCmd with no arguments runs the default transition: one capture with
// the frozen session calibration. This is the invocation cron fires on
// every tick.
var rootCmd = &cobra.Command{
	Use:   "biolapse",
	Short: "Unattended time-course imaging for a transilluminator rig",
	Long: `biolapse coordinates the Raspberry Pi camera and the LED illumination
panel to run unattended periodic image-capture sessions. Calibration is
frozen once at initialization and replayed on every capture, so all images
of a session share identical optical conditions.

Run with no arguments to take a single photo with the frozen calibration.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
		debug.Init(cfg.Defaults.DebugLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRig(cfg)
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Println("Taking Photo")
		path, err := r.machine.Capture(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		return nil
	},
}

// loadConfig reads the configured file. When the user did not name a file
// explicitly and the default path is absent, the built-in defaults apply:
// cron spawns this program in bare session directories that usually carry
// no config of their own.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loaded, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
			return config.Default(), nil
		}
		return nil, err
	}
	return loaded, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "configs/default.yaml", "path to config file")
}

// Execute runs the command tree and returns any fatal error.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
