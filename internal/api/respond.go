package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/export"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		vErr    *domain.ValidationError
		idxErr  *domain.IndexError
		nf      *domain.NotFoundError
		cfgErr  *domain.ConfigurationError
		extErr  *domain.ExtractionError
		fmtErr  *export.UnsupportedFormatError
		sizeErr *http.MaxBytesError
		stErr   *domain.StorageError
	)
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: vErr.Message, Fields: vErr.Fields})
	case errors.As(err, &idxErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid " + idxErr.List + " index", Error: idxErr.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Message: capitalize(nf.Kind) + " not found"})
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "AI analysis not available", Error: cfgErr.Reason})
	case errors.As(err, &extErr):
		logger.Error("extraction failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "AI analysis failed", Error: extErr.Err.Error()})
	case errors.As(err, &fmtErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: fmtErr.Error()})
	case errors.As(err, &sizeErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "File size exceeds 10MB limit"})
	case errors.As(err, &stErr):
		logger.Error("storage failure", "op", stErr.Op, "error", stErr.Err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Storage failure", Error: err.Error()})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Internal server error", Error: err.Error()})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &domain.ValidationError{Message: "Invalid JSON body", Fields: map[string]string{"body": err.Error()}}
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// queryBool parses an optional boolean query parameter. Missing or
// unparsable values yield nil.
func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}
