package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodingBot000/miracle3day-sub001/internal/log"
	"github.com/CodingBot000/miracle3day-sub001/internal/web"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the capture session HTTP and websocket API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := web.NewServer(cfg, nil)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen()
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-cmd.Context().Done():
		}

		log.Infof("Shutting down, closing %d sessions", srv.Registry().Len())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "how long to wait for open requests on shutdown")
	rootCmd.AddCommand(serveCmd)
}
