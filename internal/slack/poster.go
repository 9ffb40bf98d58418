package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/voting"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// maxListed caps how many themes a message names.
const maxListed = 10

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostAnalysisSummary posts the themes produced by an analysis run.
// Returns the message timestamp (ts).
func (p *Poster) PostAnalysisSummary(ctx context.Context, project domain.Project, themes []domain.Theme) (string, error) {
	text := formatAnalysisMessage(project, themes)
	ts, err := p.post(ctx, map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "Vote on these themes in ThemeSync before the next sprint review.",
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	p.logger.Info("posted analysis summary to slack", "ts", ts, "project_id", project.ID, "themes", len(themes))
	return ts, nil
}

// AnnounceResults posts the final standings of a voting session.
func (p *Poster) AnnounceResults(ctx context.Context, session domain.VotingSession, standings []voting.Standing) error {
	ts, err := p.post(ctx, map[string]any{
		"channel": p.channel,
		"text":    formatResultsMessage(session, standings),
	})
	if err != nil {
		return err
	}
	p.logger.Info("posted voting results to slack", "ts", ts, "session_id", session.ID)
	return nil
}

// PostThread posts a threaded reply to a message.
func (p *Poster) PostThread(ctx context.Context, threadTS, text string) error {
	_, err := p.post(ctx, map[string]any{
		"channel":   p.channel,
		"thread_ts": threadTS,
		"text":      text,
	})
	return err
}

func (p *Poster) post(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatAnalysisMessage(project domain.Project, themes []domain.Theme) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Project:* %s\n", project.Name)
	if project.SprintGoal != "" {
		fmt.Fprintf(&sb, "*Sprint goal:* %s\n", project.SprintGoal)
	}
	sb.WriteString("\n")

	if len(themes) == 0 {
		sb.WriteString("_No themes extracted from this analysis._")
		return sb.String()
	}

	fmt.Fprintf(&sb, "*Themes found: %d*\n", len(themes))
	for i, t := range themes {
		if i == maxListed {
			fmt.Fprintf(&sb, "_...and %d more_\n", len(themes)-maxListed)
			break
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n   Quotes: %d | HMWs: %d\n", i+1, t.Category, t.Title, len(t.Quotes), len(t.HMWQuestions))
	}
	return sb.String()
}

func formatResultsMessage(session domain.VotingSession, standings []voting.Standing) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Voting closed:* %s (%d min)\n\n", session.Name, session.Duration)

	total := 0
	for _, s := range standings {
		total += s.Votes
	}
	if total == 0 {
		sb.WriteString("_No theme votes were cast._")
		return sb.String()
	}

	for i, s := range standings {
		if i == maxListed || s.Votes == 0 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%d %s)\n", i+1, s.Title, s.Votes, plural(s.Votes, "vote", "votes"))
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
