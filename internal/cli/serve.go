package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/tkrause/symsync/internal/model"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run comprehensive syncs on an interval with a health endpoint",
	Long: "serve runs a comprehensive sync immediately and then on the configured\n" +
		"interval, exposing /healthz and /status over HTTP until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		var (
			mu   sync.Mutex
			last *model.SyncResult
		)

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			if err := a.store.Ping(req.Context()); err != nil {
				http.Error(w, "store unreachable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
			mu.Lock()
			res := last
			mu.Unlock()
			if res == nil {
				http.Error(w, "no completed run yet", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(res)
		})

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", a.cfg.Health.Port),
			Handler: r,
		}
		go func() {
			a.logger.Info("health server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("health server failed", "error", err)
			}
		}()

		runOnce := func() {
			res, err := a.engine.RunComprehensiveSync(ctx)
			if err != nil {
				a.logger.Error("sync run failed", "error", err)
				return
			}
			mu.Lock()
			last = &res
			mu.Unlock()
		}

		runOnce()

		ticker := time.NewTicker(a.cfg.Sync.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				a.logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case <-ticker.C:
				runOnce()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
