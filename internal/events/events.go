package events

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Subjects published by the service.
const (
	SubjectAnalysisCompleted = "themesync.analysis.completed"
	SubjectThemeUpdated      = "themesync.theme.updated"
	SubjectThemeDeleted      = "themesync.theme.deleted"
	SubjectSessionCreated    = "themesync.voting.session.created"
	SubjectSessionEnded      = "themesync.voting.session.ended"
	SubjectVoteChanged       = "themesync.voting.vote.changed"

	// SubjectAll matches every subject above.
	SubjectAll = "themesync.>"
)

// Publisher sends an event payload on a subject.
type Publisher interface {
	Publish(subject string, data any) error
}

// Envelope wraps every published payload.
type Envelope struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func newEnvelope(subject string, data any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type AnalysisCompleted struct {
	ProjectID int64  `json:"project_id"`
	Source    string `json:"source"` // "analyze" or "extract-themes"
	Provider  string `json:"provider"`
	Themes    int    `json:"themes"`
	Cleared   int    `json:"cleared"`
}

type ThemeChanged struct {
	ThemeID   int64 `json:"theme_id"`
	ProjectID int64 `json:"project_id"`
}

type SessionChanged struct {
	SessionID int64  `json:"session_id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
}

type VoteChanged struct {
	SessionID int64  `json:"session_id"`
	ThemeID   int64  `json:"theme_id"`
	Key       string `json:"key"`
	Voted     bool   `json:"voted"`
}

// Nop discards every event. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }

// Emit publishes and logs a failure instead of returning it; events never
// fail the request that caused them.
func Emit(p Publisher, logger *slog.Logger, subject string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(subject, data); err != nil {
		logger.Warn("publish event failed", "subject", subject, "error", err)
	}
}
