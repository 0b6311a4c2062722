package root

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chronoforge/internal/transport/ws"
	"chronoforge/internal/ui"
)

func newServeCmd() *cobra.Command {
	var (
		addr   string
		replay bool
		poll   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read API and live event stream over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = cfg.ListenAddr
			}
			if poll <= 0 {
				return errors.New("--poll must be positive")
			}
			hub := ws.NewHub(logger.Named("hub"))
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var from int64
			if !replay {
				if from, err = svc.LastEventSeq(ctx); err != nil {
					return err
				}
			}
			tailDone := make(chan struct{})
			go func() {
				defer close(tailDone)
				ws.Tail(ctx, svc, hub, from, poll, logger.Named("tail"))
			}()

			srv := &http.Server{
				Addr:              addr,
				Handler:           ws.NewAPI(svc, hub, logger.Named("api")).Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "%s http://%s (events: ws://%s/events)\n", ui.Good.Render("Serving"), addr, addr)
			logger.Info("serving", zap.String("addr", addr))

			select {
			case err := <-errCh:
				stop()
				<-tailDone
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			<-tailDone

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			hub.Close()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: listen_addr from config)")
	cmd.Flags().BoolVar(&replay, "replay", false, "stream the whole event log to subscribers, not only new events")
	cmd.Flags().DurationVar(&poll, "poll", 500*time.Millisecond, "how often to check the ledger for new events")
	return cmd
}
