package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/themesync/internal/export"
)

type exportRequest struct {
	Format         string `json:"format"`
	TranscriptType string `json:"transcriptType"`
	SprintGoal     string `json:"sprintGoal"`
	// SessionID adds that session's vote counts to the report.
	SessionID int64 `json:"sessionId"`
}

func writeDocument(w http.ResponseWriter, doc export.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Body)
}

// reportData gathers the board for a sprint report. The project's sprint
// goal is used when the request has none.
func (s *Server) reportData(ctx context.Context, req exportRequest) (export.Data, error) {
	project, err := s.deps.Store.GetProject(ctx, s.deps.ProjectID)
	if err != nil {
		return export.Data{}, err
	}
	list, err := s.deps.Themes.List(ctx, s.deps.ProjectID)
	if err != nil {
		return export.Data{}, err
	}
	d := export.Data{
		Themes:         list,
		TranscriptType: req.TranscriptType,
		SprintGoal:     req.SprintGoal,
		ExportDate:     export.DefaultExportDate(s.now()),
	}
	if d.SprintGoal == "" {
		d.SprintGoal = project.SprintGoal
	}
	if req.SessionID > 0 {
		tally, err := s.deps.Voting.Counts(ctx, req.SessionID, "")
		if err != nil {
			return export.Data{}, err
		}
		d.VoteCounts = tally.Counts
	}
	return d, nil
}

func (s *Server) exportText(w http.ResponseWriter, r *http.Request) {
	req := exportRequest{Format: "txt"}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	d, err := s.reportData(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	doc, err := export.RenderText(req.Format, d, s.now())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeDocument(w, doc)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	d, err := s.reportData(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeDocument(w, export.RenderSprintCSV(d, s.now()))
}

func (s *Server) exportProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project, err := s.deps.Store.GetProject(ctx, s.deps.ProjectID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	list, err := s.deps.Themes.List(ctx, s.deps.ProjectID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	transcripts, err := s.deps.Store.ListTranscripts(ctx, s.deps.ProjectID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	snap := export.Snapshot{Project: project, Themes: list, Transcripts: transcripts}
	doc, err := export.RenderProject(chi.URLParam(r, "format"), snap, r.URL.Query().Get("transcriptType"), s.now())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeDocument(w, doc)
}
