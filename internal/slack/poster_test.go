package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/voting"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormatAnalysisMessage_WithThemes(t *testing.T) {
	project := domain.Project{ID: 1, Name: "Onboarding research", SprintGoal: "Halve setup time"}
	themes := []domain.Theme{
		{
			Title:        "Setup takes too long",
			Category:     domain.CategoryPainPoints,
			Quotes:       []domain.Quote{{Text: "It took an hour"}},
			HMWQuestions: []string{"HMW cut setup?", "HMW explain steps?"},
		},
	}

	msg := formatAnalysisMessage(project, themes)

	checks := []string{
		"Onboarding research",
		"Halve setup time",
		"Themes found: 1",
		"[pain_points] Setup takes too long",
		"Quotes: 1 | HMWs: 2",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q, got %q", check, msg)
		}
	}
}

func TestFormatAnalysisMessage_Empty(t *testing.T) {
	msg := formatAnalysisMessage(domain.Project{Name: "P"}, nil)
	if !strings.Contains(msg, "No themes extracted") {
		t.Errorf("expected empty message, got %q", msg)
	}
	if strings.Contains(msg, "Sprint goal") {
		t.Errorf("expected no sprint goal line, got %q", msg)
	}
}

func TestFormatAnalysisMessage_Truncates(t *testing.T) {
	themes := make([]domain.Theme, maxListed+3)
	for i := range themes {
		themes[i] = domain.Theme{Title: "t", Category: domain.CategoryGeneric}
	}
	msg := formatAnalysisMessage(domain.Project{Name: "P"}, themes)
	if !strings.Contains(msg, "...and 3 more") {
		t.Errorf("expected truncation note, got %q", msg)
	}
}

func TestFormatResultsMessage(t *testing.T) {
	session := domain.VotingSession{Name: "Round 1", Duration: 5}

	msg := formatResultsMessage(session, []voting.Standing{
		{Title: "Beta", Votes: 3},
		{Title: "Alpha", Votes: 1},
		{Title: "Gamma", Votes: 0},
	})
	for _, check := range []string{"Round 1 (5 min)", "1. Beta (3 votes)", "2. Alpha (1 vote)"} {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q, got %q", check, msg)
		}
	}
	if strings.Contains(msg, "Gamma") {
		t.Errorf("themes without votes should not be listed, got %q", msg)
	}

	msg = formatResultsMessage(session, []voting.Standing{{Title: "Alpha"}})
	if !strings.Contains(msg, "No theme votes") {
		t.Errorf("expected no-votes message, got %q", msg)
	}
}

func TestPostAnalysisSummary_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected Bearer xoxb-test, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["channel"] != "C123" {
			t.Errorf("expected channel C123, got %v", payload["channel"])
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": "1234567890.123456",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	ts, err := p.PostAnalysisSummary(context.Background(), domain.Project{ID: 1, Name: "P"}, []domain.Theme{{Title: "t"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "1234567890.123456" {
		t.Errorf("expected ts 1234567890.123456, got %q", ts)
	}
}

func TestAnnounceResults_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	err := p.AnnounceResults(context.Background(), domain.VotingSession{ID: 1, Name: "R"}, nil)
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected slack error, got %v", err)
	}
}

func TestPostThread(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "2"})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	if err := p.PostThread(context.Background(), "1.0", "details"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["thread_ts"] != "1.0" || got["text"] != "details" {
		t.Errorf("unexpected payload %v", got)
	}
}
