package cli

import (
	"github.com/spf13/cobra"

	"github.com/seqlab/biolapse/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a read-only status API over the session",
	Long: `Starts an HTTP server exposing the session state, the capture journal and
the most recent image. The server never drives the hardware; captures keep
coming from cron-spawned invocations while it runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stateStore, j, err := openReadOnly(cfg)
		if err != nil {
			return err
		}
		defer j.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.ServerAddress()
		}

		srv := web.NewServer(addr, stateStore, j)
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
