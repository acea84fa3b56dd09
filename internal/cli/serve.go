package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pulseboard/internal/prefserver"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve preferences over HTTP for other dashboard clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Global.Addr
			}
			if addr == "" {
				addr = ":8750"
			}
			store, _, err := openStore(app)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           prefserver.New(store, app.Logger).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("preference service listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("PULSEBOARD_ADDR", ""), "Listen address (default :8750)")
	return cmd
}
