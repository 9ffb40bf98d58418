package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/insights"
	"github.com/MikeSquared-Agency/themesync/internal/themes"
)

func filterFromQuery(r *http.Request) insights.Filter {
	q := r.URL.Query()
	return insights.Filter{
		Search:           q.Get("search"),
		Category:         q.Get("category"),
		HasQuotes:        queryBool(r, "hasQuotes"),
		HasHMWs:          queryBool(r, "hasHMWs"),
		HasAISuggestions: queryBool(r, "hasAISuggestions"),
	}
}

// boardThemes returns the project's themes after the query's filter.
func (s *Server) boardThemes(r *http.Request) ([]domain.Theme, error) {
	all, err := s.deps.Themes.List(r.Context(), s.deps.ProjectID)
	if err != nil {
		return nil, err
	}
	return filterFromQuery(r).Apply(all), nil
}

func (s *Server) listThemes(w http.ResponseWriter, r *http.Request) {
	list, err := s.boardThemes(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if order := r.URL.Query().Get("sort"); order != "" {
		list = insights.Sort(list, order)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) themeStats(w http.ResponseWriter, r *http.Request) {
	list, err := s.boardThemes(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, insights.Summarize(list))
}

func (s *Server) createTheme(w http.ResponseWriter, r *http.Request) {
	var p themes.Patch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, s.logger, err)
		return
	}
	t, err := s.deps.Themes.Create(r.Context(), s.deps.ProjectID, p)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Theme created successfully",
		"theme":   t,
	})
}

func (s *Server) getTheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	t, err := s.deps.Themes.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var p themes.Patch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, s.logger, err)
		return
	}
	t, err := s.deps.Themes.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Theme updated successfully",
		"theme":   t,
	})
}

func (s *Server) deleteTheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Themes.Delete(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Theme deleted successfully"})
}

// itemParams reads the {id}/{itemType}/{itemIndex} path segments.
func itemParams(r *http.Request) (id int64, itemType string, index int, err error) {
	id, err = pathID(r, "id")
	if err != nil {
		return 0, "", 0, err
	}
	itemType = chi.URLParam(r, "itemType")
	index, convErr := strconv.Atoi(chi.URLParam(r, "itemIndex"))
	if convErr != nil {
		return 0, "", 0, domain.Invalid("itemIndex", "must be an integer")
	}
	return id, itemType, index, nil
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, itemType, index, err := itemParams(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req struct {
		NewValue string `json:"newValue"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	t, err := s.deps.Themes.SetListItem(r.Context(), id, itemType, index, req.NewValue)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item updated successfully",
		"theme":   t,
	})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, itemType, index, err := itemParams(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	t, err := s.deps.Themes.RemoveListItem(r.Context(), id, itemType, index)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item deleted successfully",
		"theme":   t,
	})
}
