package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siegeai/siegeingest/httpapi"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inference API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}

			s := httpapi.NewServer(httpapi.Options{
				MaxDepth:   a.cfg.MaxDepth,
				MaxSamples: a.cfg.MaxSamples,
				Tolerance:  a.cfg.Tolerance,
				SchemaTTL:  ttl,
			}, a.log)

			srv := &http.Server{Addr: addr, Handler: s.Handler()}

			term := make(chan os.Signal, 1)
			signal.Notify(term, syscall.SIGINT, syscall.SIGTERM)

			errc := make(chan error, 1)
			go func() {
				a.log.Info("listening", "addr", addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-term:
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	cmd.Flags().DurationVar(&ttl, "schema-ttl", time.Hour, "how long learned schemas stay cached")
	return cmd
}
