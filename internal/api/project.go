package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/ingest"
)

// maxUploadBytes caps one multipart request.
const maxUploadBytes = 10 * ingest.MaxFileSize

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Store.GetProject(r.Context(), s.deps.ProjectID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type projectPatch struct {
	SprintGoal      *string   `json:"sprintGoal"`
	SprintQuestions *[]string `json:"sprintQuestions"`
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var req projectPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	p, err := s.deps.Store.UpdateProject(r.Context(), s.deps.ProjectID, func(p *domain.Project) error {
		if req.SprintGoal != nil {
			p.SprintGoal = *req.SprintGoal
		}
		if req.SprintQuestions != nil {
			p.SprintQuestions = slices.Clone(*req.SprintQuestions)
		}
		return nil
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) addText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	t, err := ingest.FromText(s.deps.ProjectID, req.Content, s.now())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	created, err := s.deps.Store.CreateTranscript(r.Context(), t)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Text added successfully",
		"transcript": created,
	})
}

// upload stores every file of the "files" field. All files are validated
// before any is stored.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var sizeErr *http.MaxBytesError
		if !errors.As(err, &sizeErr) {
			err = &domain.ValidationError{Message: "No files uploaded", Fields: map[string]string{"files": err.Error()}}
		}
		writeError(w, s.logger, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, s.logger, &domain.ValidationError{Message: "No files uploaded"})
		return
	}

	pending := make([]domain.Transcript, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > ingest.MaxFileSize {
			writeError(w, s.logger, &domain.ValidationError{Message: "File size exceeds 10MB limit"})
			return
		}
		data, err := readPart(fh)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		t, err := ingest.FromUpload(s.deps.ProjectID, fh.Filename, fh.Header.Get("Content-Type"), data)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		pending = append(pending, t)
	}

	stored := make([]domain.Transcript, 0, len(pending))
	for _, t := range pending {
		created, err := s.deps.Store.CreateTranscript(r.Context(), t)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		stored = append(stored, created)
	}
	s.logger.Info("transcripts uploaded", "count", len(stored), "project_id", s.deps.ProjectID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Files uploaded successfully",
		"transcripts": stored,
	})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) listTranscripts(w http.ResponseWriter, r *http.Request) {
	ts, err := s.deps.Store.ListTranscripts(r.Context(), s.deps.ProjectID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if ts == nil {
		ts = []domain.Transcript{}
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) deleteTranscript(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Store.DeleteTranscript(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Transcript deleted successfully"})
}
