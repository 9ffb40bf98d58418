package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// Postgres is a Store backed by a pgx connection pool. The schema is
// created by Migrate.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

func storageErr(op string, err error) error {
	return &domain.StorageError{Op: op, Err: err}
}

func notFoundOr(kind string, id int64, op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return storageErr(op, err)
}

// --- projects ---

const projectColumns = `id, name, description, sprint_goal, sprint_questions, created_at`

func scanProject(row pgx.Row) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SprintGoal, &p.SprintQuestions, &p.CreatedAt)
	p.SprintQuestions = nonNil(p.SprintQuestions)
	return p, err
}

func (s *Postgres) EnsureDefaultProject(ctx context.Context) (domain.Project, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (name, description)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM projects)`,
		domain.DefaultProjectName, "Default project for analyzing research transcripts",
	)
	if err != nil {
		return domain.Project{}, storageErr("insert default project", err)
	}

	p, err := scanProject(s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id LIMIT 1`))
	if err != nil {
		return domain.Project{}, storageErr("select default project", err)
	}
	return p, nil
}

func (s *Postgres) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return domain.Project{}, notFoundOr("project", id, "select project", err)
	}
	return p, nil
}

func (s *Postgres) UpdateProject(ctx context.Context, id int64, mutate func(*domain.Project) error) (domain.Project, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Project{}, storageErr("begin tx", err)
	}
	defer tx.Rollback(ctx)

	p, err := scanProject(tx.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return domain.Project{}, notFoundOr("project", id, "select project", err)
	}
	if err := mutate(&p); err != nil {
		return domain.Project{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE projects SET name = $2, description = $3, sprint_goal = $4, sprint_questions = $5
		WHERE id = $1`,
		id, p.Name, p.Description, p.SprintGoal, nonNil(p.SprintQuestions),
	)
	if err != nil {
		return domain.Project{}, storageErr("update project", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Project{}, storageErr("commit", err)
	}
	p.ID = id
	return p, nil
}

// --- transcripts ---

func (s *Postgres) CreateTranscript(ctx context.Context, t domain.Transcript) (domain.Transcript, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO transcripts (project_id, filename, content, file_type, transcript_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uploaded_at`,
		t.ProjectID, t.Filename, t.Content, t.FileType, t.TranscriptType,
	).Scan(&t.ID, &t.UploadedAt)
	if err != nil {
		return domain.Transcript{}, storageErr("insert transcript", err)
	}
	return t, nil
}

func (s *Postgres) ListTranscripts(ctx context.Context, projectID int64) ([]domain.Transcript, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, filename, content, file_type, transcript_type, uploaded_at
		FROM transcripts WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, storageErr("list transcripts", err)
	}
	defer rows.Close()

	out := []domain.Transcript{}
	for rows.Next() {
		var t domain.Transcript
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Filename, &t.Content, &t.FileType, &t.TranscriptType, &t.UploadedAt); err != nil {
			return nil, storageErr("scan transcript", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transcripts", err)
	}
	return out, nil
}

func (s *Postgres) DeleteTranscript(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transcripts WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete transcript", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "transcript", ID: id}
	}
	return nil
}

// --- themes ---

const themeColumns = `id, project_id, title, description, color, quotes, hmw_questions, ai_suggested_steps, category, position, created_at, updated_at`

func scanTheme(row pgx.Row) (domain.Theme, error) {
	var (
		t      domain.Theme
		quotes []byte
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Color, &quotes,
		&t.HMWQuestions, &t.AISuggestedSteps, &t.Category, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Theme{}, err
	}
	if err := json.Unmarshal(quotes, &t.Quotes); err != nil {
		return domain.Theme{}, fmt.Errorf("decode quotes: %w", err)
	}
	return normalizeTheme(t), nil
}

func (s *Postgres) CreateTheme(ctx context.Context, t domain.Theme) (domain.Theme, error) {
	t = normalizeTheme(t)
	quotes, err := json.Marshal(t.Quotes)
	if err != nil {
		return domain.Theme{}, fmt.Errorf("encode quotes: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO themes (project_id, title, description, color, quotes, hmw_questions, ai_suggested_steps, category, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		t.ProjectID, t.Title, t.Description, t.Color, quotes, t.HMWQuestions, t.AISuggestedSteps, t.Category, t.Position,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Theme{}, storageErr("insert theme", err)
	}
	return t, nil
}

func (s *Postgres) GetTheme(ctx context.Context, id int64) (domain.Theme, error) {
	t, err := scanTheme(s.pool.QueryRow(ctx, `SELECT `+themeColumns+` FROM themes WHERE id = $1`, id))
	if err != nil {
		return domain.Theme{}, notFoundOr("theme", id, "select theme", err)
	}
	return t, nil
}

func (s *Postgres) ListThemes(ctx context.Context, projectID int64) ([]domain.Theme, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+themeColumns+` FROM themes WHERE project_id = $1 ORDER BY position, id`, projectID)
	if err != nil {
		return nil, storageErr("list themes", err)
	}
	defer rows.Close()

	out := []domain.Theme{}
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, storageErr("scan theme", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list themes", err)
	}
	return out, nil
}

func (s *Postgres) UpdateTheme(ctx context.Context, id int64, mutate func(*domain.Theme) error) (domain.Theme, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Theme{}, storageErr("begin tx", err)
	}
	defer tx.Rollback(ctx)

	t, err := scanTheme(tx.QueryRow(ctx, `SELECT `+themeColumns+` FROM themes WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return domain.Theme{}, notFoundOr("theme", id, "select theme", err)
	}
	if err := mutate(&t); err != nil {
		return domain.Theme{}, err
	}
	t = normalizeTheme(t)

	quotes, err := json.Marshal(t.Quotes)
	if err != nil {
		return domain.Theme{}, fmt.Errorf("encode quotes: %w", err)
	}

	err = tx.QueryRow(ctx, `
		UPDATE themes SET title = $2, description = $3, color = $4, quotes = $5, hmw_questions = $6,
			ai_suggested_steps = $7, category = $8, position = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		id, t.Title, t.Description, t.Color, quotes, t.HMWQuestions, t.AISuggestedSteps, t.Category, t.Position,
	).Scan(&t.UpdatedAt)
	if err != nil {
		return domain.Theme{}, storageErr("update theme", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Theme{}, storageErr("commit", err)
	}
	t.ID = id
	return t, nil
}

func (s *Postgres) DeleteTheme(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM themes WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete theme", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "theme", ID: id}
	}
	return nil
}

func (s *Postgres) ClearThemes(ctx context.Context, projectID int64) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM themes WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, storageErr("clear themes", err)
	}
	return int(tag.RowsAffected()), nil
}

// --- analysis settings ---

func (s *Postgres) GetAnalysisSettings(ctx context.Context, projectID int64) (domain.AnalysisSettings, error) {
	a := domain.AnalysisSettings{ProjectID: projectID}
	err := s.pool.QueryRow(ctx, `
		SELECT pain_points, feature_requests, user_behaviors, emotions, theme_count
		FROM analysis_settings WHERE project_id = $1`, projectID,
	).Scan(&a.PainPoints, &a.FeatureRequests, &a.UserBehaviors, &a.Emotions, &a.ThemeCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultAnalysisSettings(projectID), nil
	}
	if err != nil {
		return domain.AnalysisSettings{}, storageErr("select analysis settings", err)
	}
	return a, nil
}

func (s *Postgres) SaveAnalysisSettings(ctx context.Context, a domain.AnalysisSettings) (domain.AnalysisSettings, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO analysis_settings (project_id, pain_points, feature_requests, user_behaviors, emotions, theme_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id) DO UPDATE SET
			pain_points = EXCLUDED.pain_points,
			feature_requests = EXCLUDED.feature_requests,
			user_behaviors = EXCLUDED.user_behaviors,
			emotions = EXCLUDED.emotions,
			theme_count = EXCLUDED.theme_count`,
		a.ProjectID, a.PainPoints, a.FeatureRequests, a.UserBehaviors, a.Emotions, a.ThemeCount,
	)
	if err != nil {
		return domain.AnalysisSettings{}, storageErr("upsert analysis settings", err)
	}
	return a, nil
}

// --- voting sessions ---

const sessionColumns = `id, project_id, name, duration, is_active, created_at, starts_at, ends_at`

func scanSession(row pgx.Row) (domain.VotingSession, error) {
	var v domain.VotingSession
	err := row.Scan(&v.ID, &v.ProjectID, &v.Name, &v.Duration, &v.IsActive, &v.CreatedAt, &v.StartsAt, &v.EndsAt)
	return v, err
}

func (s *Postgres) CreateVotingSession(ctx context.Context, v domain.VotingSession) (domain.VotingSession, error) {
	created, err := scanSession(s.pool.QueryRow(ctx, `
		INSERT INTO voting_sessions (project_id, name, duration, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+sessionColumns,
		v.ProjectID, v.Name, v.Duration, v.IsActive,
	))
	if err != nil {
		return domain.VotingSession{}, storageErr("insert voting session", err)
	}
	return created, nil
}

func (s *Postgres) GetVotingSession(ctx context.Context, id int64) (domain.VotingSession, error) {
	v, err := scanSession(s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM voting_sessions WHERE id = $1`, id))
	if err != nil {
		return domain.VotingSession{}, notFoundOr("voting session", id, "select voting session", err)
	}
	return v, nil
}

func (s *Postgres) ActiveVotingSession(ctx context.Context, projectID int64) (*domain.VotingSession, error) {
	v, err := scanSession(s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM voting_sessions
		WHERE project_id = $1 AND is_active
		ORDER BY id DESC LIMIT 1`, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select active voting session", err)
	}
	return &v, nil
}

func (s *Postgres) EndVotingSession(ctx context.Context, id int64) (domain.VotingSession, error) {
	v, err := scanSession(s.pool.QueryRow(ctx, `
		UPDATE voting_sessions SET is_active = false, ends_at = now()
		WHERE id = $1 AND is_active
		RETURNING `+sessionColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		// Already ended, or missing.
		return s.GetVotingSession(ctx, id)
	}
	if err != nil {
		return domain.VotingSession{}, storageErr("end voting session", err)
	}
	return v, nil
}

// --- votes ---

func (s *Postgres) InsertVote(ctx context.Context, v domain.Vote) (domain.Vote, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO votes (session_id, theme_id, item_type, item_index, voter_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		v.SessionID, v.ThemeID, v.ItemType, v.ItemIndex, v.VoterToken,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return domain.Vote{}, storageErr("insert vote", err)
	}
	return v, nil
}

func (s *Postgres) DeleteVote(ctx context.Context, v domain.Vote) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM votes
		WHERE session_id = $1 AND theme_id = $2 AND item_type = $3
			AND item_index IS NOT DISTINCT FROM $4 AND voter_token = $5`,
		v.SessionID, v.ThemeID, v.ItemType, v.ItemIndex, v.VoterToken,
	)
	if err != nil {
		return false, storageErr("delete vote", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) ListVotes(ctx context.Context, sessionID int64) ([]domain.Vote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, theme_id, item_type, item_index, voter_token, created_at
		FROM votes WHERE session_id = $1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, storageErr("list votes", err)
	}
	defer rows.Close()

	out := []domain.Vote{}
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.ID, &v.SessionID, &v.ThemeID, &v.ItemType, &v.ItemIndex, &v.VoterToken, &v.CreatedAt); err != nil {
			return nil, storageErr("scan vote", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list votes", err)
	}
	return out, nil
}
