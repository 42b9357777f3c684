package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/vocapp/internal/api"
	"github.com/example/vocapp/internal/auth"
	"github.com/example/vocapp/internal/scheduler"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.cfg.ValidateServe(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, a)
	},
}

func runServer(ctx context.Context, a *app) error {
	handler := api.NewRouter(api.Deps{
		Words:        a.words,
		Learners:     a.learners,
		Stats:        a.stats,
		Definer:      a.definer(),
		Auth:         auth.NewManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL, a.clock),
		Clock:        a.clock,
		Log:          a.log,
		LookupRate:   a.cfg.HTTP.LookupRate,
		LookupBurst:  a.cfg.HTTP.LookupBurst,
		SecureCookie: a.cfg.HTTP.SecureCookie,
	})
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("vocapp listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.cfg.Scheduler.Enabled {
		sched := scheduler.New(a.cfg.Scheduler, a.learners, a.words, a.notifier(), a.clock, a.log)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-ctx.Done()
			sched.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
