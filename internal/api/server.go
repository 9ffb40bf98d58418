package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/themesync/internal/analysis"
	"github.com/MikeSquared-Agency/themesync/internal/prompts"
	"github.com/MikeSquared-Agency/themesync/internal/store"
	"github.com/MikeSquared-Agency/themesync/internal/themes"
	"github.com/MikeSquared-Agency/themesync/internal/voting"
)

// Deps are the services the HTTP layer routes to.
type Deps struct {
	Store     store.Store
	Themes    *themes.Service
	Voting    *voting.Service
	Analysis  *analysis.Pipeline
	Templates *prompts.Registry
	// ProjectID is the default project every board route works on.
	ProjectID int64
	// APIToken guards /api when set.
	APIToken string
	Logger   *slog.Logger
}

type Server struct {
	router *chi.Mux
	port   int
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

func NewServer(port int, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		deps:   deps,
		logger: deps.Logger,
		now:    time.Now,
	}

	router.Get("/health", s.health)
	router.NotFound(s.notFound)

	router.Route("/api", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(deps.APIToken))

		r.Get("/project", s.getProject)
		r.Patch("/project", s.updateProject)

		r.Post("/text", s.addText)
		r.Post("/upload", s.upload)
		r.Get("/transcripts", s.listTranscripts)
		r.Delete("/transcripts/{id}", s.deleteTranscript)

		r.Post("/sprint/analyze", s.analyze)
		r.Post("/extract-themes", s.extractThemes)
		r.Get("/sprint/templates", s.listTemplates)
		r.Post("/sprint/templates/custom", s.customTemplate)
		r.Put("/sprint/templates/{key}", s.putTemplate)

		r.Get("/analysis-settings", s.getAnalysisSettings)
		r.Put("/analysis-settings", s.putAnalysisSettings)

		r.Route("/themes", func(r chi.Router) {
			r.Get("/", s.listThemes)
			r.Post("/", s.createTheme)
			r.Get("/stats", s.themeStats)
			r.Get("/{id}", s.getTheme)
			r.Patch("/{id}", s.updateTheme)
			r.Delete("/{id}", s.deleteTheme)
			r.Post("/{id}/refine", s.refineTheme)
			r.Patch("/{id}/items/{itemType}/{itemIndex}", s.updateItem)
			r.Delete("/{id}/items/{itemType}/{itemIndex}", s.deleteItem)
		})

		r.Route("/voting", func(r chi.Router) {
			r.Post("/sessions", s.createSession)
			r.Get("/sessions/{projectId}/active", s.activeSession)
			r.Post("/sessions/{id}/end", s.endSession)
			r.Post("/vote", s.castVote)
			r.Delete("/vote", s.removeVote)
			r.Post("/vote/toggle", s.toggleVote)
			r.Get("/votes/{sessionId}", s.listVotes)
			r.Get("/counts/{sessionId}", s.voteCounts)
		})

		r.Post("/export/text", s.exportText)
		r.Post("/export/csv", s.exportCSV)
		r.Get("/export/{format}", s.exportProject)
	})

	return s
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"aiAvailable": s.deps.Analysis != nil && s.deps.Analysis.Available(),
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Message: "Not found"})
}
