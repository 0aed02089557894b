package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/onboard-cli/internal/model"
	"github.com/sells-group/onboard-cli/internal/pipeline"
	"github.com/sells-group/onboard-cli/internal/report"
)

var servePort int

// runner is the slice of the pipeline the HTTP layer needs.
type runner interface {
	Run(ctx context.Context, dossier pipeline.Dossier) (*model.RunResult, error)
}

// runStore keeps completed runs in memory, keyed by run ID. Runs are not
// persisted; a restart starts empty.
type runStore struct {
	mu   sync.RWMutex
	runs map[string]*model.RunResult
}

func newRunStore() *runStore {
	return &runStore{runs: make(map[string]*model.RunResult)}
}

func (s *runStore) put(run *model.RunResult) {
	s.mu.Lock()
	s.runs[run.RunID] = run
	s.mu.Unlock()
}

func (s *runStore) get(id string) (*model.RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

type runRequest struct {
	Candidate      string `json:"candidate"`
	FormPath       string `json:"form_path"`
	ResumePath     string `json:"resume_path"`
	IDCardPath     string `json:"id_card_path"`
	TranscriptPath string `json:"transcript_path"`
}

// newRouter builds the HTTP API: health, submit a run, fetch a run.
func newRouter(p runner, store *runStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/runs", func(w http.ResponseWriter, req *http.Request) {
		var body runRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.FormPath == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "form_path is required"})
			return
		}

		run, err := p.Run(req.Context(), pipeline.Dossier{
			Candidate:      body.Candidate,
			FormPath:       body.FormPath,
			ResumePath:     body.ResumePath,
			IDCardPath:     body.IDCardPath,
			TranscriptPath: body.TranscriptPath,
		})
		if err != nil {
			zap.L().Error("serve: run failed", zap.Error(err))
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		store.put(run)

		writeExport(w, http.StatusCreated, run)
	})

	r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		run, ok := store.get(chi.URLParam(req, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		writeExport(w, http.StatusOK, run)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeExport(w http.ResponseWriter, status int, run *model.RunResult) {
	data, err := report.ExportJSON(run)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := buildPipeline("serve")
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(p, newRunStore()),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
