package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/hostline"
	"github.com/aretw0/hostline/internal/logging"
	httpAdapter "github.com/aretw0/hostline/pkg/adapters/http"
	"github.com/aretw0/hostline/pkg/calllog"
	"github.com/aretw0/hostline/pkg/observability"
	"github.com/aretw0/hostline/pkg/session"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook and conversation HTTP server",
	Long: `Serves the voice platform webhook, the chatbot log endpoint, the
conversation turn API, the knowledge API and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (overrides PORT)")
	serveCmd.Flags().Bool("audit", false, "log every state transition")
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	a, err := newApp(cmd, logging.FormatJSON)
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetInt("port"); p > 0 {
		a.cfg.Port = p
	}

	metrics := observability.NewMetrics()
	hooks := metrics.Hooks()
	if audit, _ := cmd.Flags().GetBool("audit"); audit {
		hooks = hooks.Chain(observability.AuditHooks(a.logger))
	}
	eng, err := a.engine(ctx, hooks)
	if err != nil {
		return err
	}

	store, locker, closeStore, err := a.store(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	sessOpts := []session.Option{session.WithLogger(a.logger)}
	if locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(locker))
	}
	sessions := session.NewManager(store, eng, sessOpts...)

	callLog, err := a.callLogger(ctx, calllog.WithObserver(metrics.ObserveCallLog))
	if err != nil {
		return err
	}
	defer callLog.Wait()

	graph, err := eng.Graph()
	if err != nil {
		return err
	}

	handler, err := httpAdapter.NewHandler(httpAdapter.Config{
		Sessions:  sessions,
		Knowledge: a.kb,
		Chat:      a.responder,
		CallLog:   callLog,
		Graph:     &graph,
		Metrics:   metrics.Handler(),
		Logger:    a.logger,
		Version:   hostline.Version,

		MaxInputBytes: a.cfg.MaxInputBytes,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("hostline server listening", "addr", srv.Addr, "version", hostline.Version)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down", "timeout", shutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		return nil
	})
	return g.Wait()
}
