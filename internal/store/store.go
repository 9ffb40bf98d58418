package store

import (
	"context"
	"log/slog"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// Store persists projects, transcripts, themes, settings, voting sessions
// and votes. Missing rows are reported as *domain.NotFoundError and backend
// failures as *domain.StorageError.
type Store interface {
	EnsureDefaultProject(ctx context.Context) (domain.Project, error)
	GetProject(ctx context.Context, id int64) (domain.Project, error)
	UpdateProject(ctx context.Context, id int64, mutate func(*domain.Project) error) (domain.Project, error)

	CreateTranscript(ctx context.Context, t domain.Transcript) (domain.Transcript, error)
	ListTranscripts(ctx context.Context, projectID int64) ([]domain.Transcript, error)
	DeleteTranscript(ctx context.Context, id int64) error

	CreateTheme(ctx context.Context, t domain.Theme) (domain.Theme, error)
	GetTheme(ctx context.Context, id int64) (domain.Theme, error)
	// ListThemes orders by position, then id.
	ListThemes(ctx context.Context, projectID int64) ([]domain.Theme, error)
	// UpdateTheme applies mutate atomically and touches UpdatedAt. An error
	// from mutate aborts the update and is returned unchanged.
	UpdateTheme(ctx context.Context, id int64, mutate func(*domain.Theme) error) (domain.Theme, error)
	DeleteTheme(ctx context.Context, id int64) error
	ClearThemes(ctx context.Context, projectID int64) (int, error)

	// GetAnalysisSettings returns the defaults when none were saved.
	GetAnalysisSettings(ctx context.Context, projectID int64) (domain.AnalysisSettings, error)
	SaveAnalysisSettings(ctx context.Context, s domain.AnalysisSettings) (domain.AnalysisSettings, error)

	CreateVotingSession(ctx context.Context, s domain.VotingSession) (domain.VotingSession, error)
	GetVotingSession(ctx context.Context, id int64) (domain.VotingSession, error)
	// ActiveVotingSession returns nil when the project has no active session.
	ActiveVotingSession(ctx context.Context, projectID int64) (*domain.VotingSession, error)
	// EndVotingSession marks the session ended. Ending an ended session
	// returns it unchanged.
	EndVotingSession(ctx context.Context, id int64) (domain.VotingSession, error)

	InsertVote(ctx context.Context, v domain.Vote) (domain.Vote, error)
	// DeleteVote removes the vote sharing v's natural key and reports whether one existed.
	DeleteVote(ctx context.Context, v domain.Vote) (bool, error)
	ListVotes(ctx context.Context, sessionID int64) ([]domain.Vote, error)

	Close()
}

// Open connects to Postgres when databaseURL is set, otherwise it returns an
// in-memory store.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (Store, error) {
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		return NewMemory(), nil
	}
	pg, err := NewPostgres(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilQuotes(q []domain.Quote) []domain.Quote {
	if q == nil {
		return []domain.Quote{}
	}
	return q
}
