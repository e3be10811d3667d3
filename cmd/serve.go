package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/finder"
	"github.com/sells-group/prospect-cli/internal/icp"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

const maxICPBodyBytes = 1 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the discovery HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initDiscovery(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		router, inflight := buildRouter(ctx, env.Service, env.Store)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		shutdownDone := make(chan struct{})
		go func() {
			defer close(shutdownDone)
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		<-shutdownDone
		// Runs observe ctx and persist their partial results before returning.
		inflight.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// runTracker counts background runs. Once Wait has been called it refuses
// new ones, so Go never races with Wait.
type runTracker struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// Go starts fn in a goroutine and reports whether it was accepted.
func (t *runTracker) Go(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
	return true
}

// Wait stops accepting runs and blocks until the started ones return.
func (t *runTracker) Wait() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.wg.Wait()
}

// buildRouter wires the API routes. Accepted runs execute on ctx, not on the
// request context, and are tracked by the returned runTracker. A nil store
// disables the run endpoints.
func buildRouter(ctx context.Context, svc *finder.Service, st store.Store) (http.Handler, *runTracker) {
	inflight := &runTracker{}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/discover", func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeError(w, http.StatusServiceUnavailable, "discovery is not configured")
			return
		}

		if ctx.Err() != nil {
			writeError(w, http.StatusServiceUnavailable, "server is shutting down")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxICPBodyBytes))
		if err != nil || len(body) == 0 {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		profile, err := icp.Parse(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid icp")
			return
		}

		run, err := svc.Start(r.Context(), profile)
		if err != nil {
			zap.L().Error("start run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not start run")
			return
		}

		execute := func() {
			result, err := svc.Execute(ctx, run)
			if err != nil {
				zap.L().Error("discovery run failed", zap.String("run_id", run.ID), zap.Error(err))
				return
			}
			zap.L().Info("discovery run complete",
				zap.String("run_id", run.ID),
				zap.Int("prospects", len(result.Prospects)),
			)
		}
		if !inflight.Go(execute) {
			// Draining began after Start; run inline so the run is not left running.
			execute()
			writeError(w, http.StatusServiceUnavailable, "server is shutting down")
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status": "accepted",
			"run_id": run.ID,
		})
	})

	r.Route("/v1/runs", func(r chi.Router) {
		r.Use(requireStore(st))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			filter, err := parseRunFilter(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			runs, err := st.ListRuns(r.Context(), filter)
			if err != nil {
				zap.L().Error("list runs failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "could not list runs")
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		r.Get("/{id}/prospects", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if _, err := st.GetRun(r.Context(), id); err != nil {
				writeStoreError(w, err)
				return
			}
			prospects, err := st.ListProspects(r.Context(), id)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, prospects)
		})
	})

	return r, inflight
}

func requireStore(st store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if st == nil {
				writeError(w, http.StatusNotImplemented, "run store is disabled")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseRunFilter(r *http.Request) (model.RunFilter, error) {
	q := r.URL.Query()
	filter := model.RunFilter{Status: model.RunStatus(q.Get("status"))}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, eris.Errorf("invalid %s", name)
		}
		*dst = n
	}
	return filter, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	zap.L().Error("store read failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
