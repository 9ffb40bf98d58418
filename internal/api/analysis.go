package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/themesync/internal/analysis"
	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/prompts"
)

type analyzeRequest struct {
	TranscriptContent string `json:"transcriptContent"`
	TranscriptType    string `json:"transcriptType"`
	SprintGoal        string `json:"sprintGoal"`
	TemplateKey       string `json:"templateKey"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	res, err := s.deps.Analysis.Analyze(r.Context(), analysis.AnalyzeRequest{
		ProjectID:         s.deps.ProjectID,
		TranscriptContent: req.TranscriptContent,
		TranscriptType:    req.TranscriptType,
		SprintGoal:        req.SprintGoal,
		TemplateKey:       req.TemplateKey,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Analysis completed successfully",
		"themes":  res.Themes,
		"count":   len(res.Themes),
	})
}

func (s *Server) extractThemes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Settings *domain.AnalysisSettings `json:"settings"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	var settings domain.AnalysisSettings
	if req.Settings != nil {
		settings = *req.Settings
	} else {
		stored, err := s.deps.Store.GetAnalysisSettings(r.Context(), s.deps.ProjectID)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		settings = stored
	}

	res, err := s.deps.Analysis.ExtractThemes(r.Context(), s.deps.ProjectID, settings)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Themes extracted successfully",
		"themes":  res.Themes,
	})
}

func (s *Server) refineTheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req struct {
		Context string `json:"context"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	t, err := s.deps.Analysis.Refine(r.Context(), id, req.Context)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Theme refined successfully",
		"theme":   t,
	})
}

func (s *Server) getAnalysisSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Store.GetAnalysisSettings(r.Context(), s.deps.ProjectID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) putAnalysisSettings(w http.ResponseWriter, r *http.Request) {
	settings := domain.DefaultAnalysisSettings(s.deps.ProjectID)
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, s.logger, err)
		return
	}
	settings.ProjectID = s.deps.ProjectID
	saved, err := s.deps.Store.SaveAnalysisSettings(r.Context(), settings)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Templates.All())
}

func (s *Server) putTemplate(w http.ResponseWriter, r *http.Request) {
	var t prompts.Template
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.register(w, chi.URLParam(r, "key"), t)
}

type customTemplateRequest struct {
	Key          string   `json:"key"`
	FocusAreas   []string `json:"focusAreas"`
	OutputFormat string   `json:"outputFormat"`
	Depth        string   `json:"depth"`
}

func (s *Server) customTemplate(w http.ResponseWriter, r *http.Request) {
	var req customTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if len(req.FocusAreas) == 0 {
		writeError(w, s.logger, domain.Invalid("focusAreas", "at least one focus area is required"))
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		key = "custom"
	}
	s.register(w, key, prompts.Custom(req.FocusAreas, req.OutputFormat, req.Depth))
}

func (s *Server) register(w http.ResponseWriter, key string, t prompts.Template) {
	if err := s.deps.Templates.Register(key, t); err != nil {
		writeError(w, s.logger, &domain.ValidationError{Message: err.Error()})
		return
	}
	s.logger.Info("template registered", "key", key)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Template saved successfully",
		"key":      key,
		"template": t,
	})
}
