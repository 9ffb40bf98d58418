package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// Memory is a Store backed by maps guarded by a single RWMutex.
type Memory struct {
	mu sync.RWMutex

	nextID      int64
	projects    map[int64]domain.Project
	transcripts map[int64]domain.Transcript
	themes      map[int64]domain.Theme
	settings    map[int64]domain.AnalysisSettings
	sessions    map[int64]domain.VotingSession
	votes       map[int64]domain.Vote

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		projects:    make(map[int64]domain.Project),
		transcripts: make(map[int64]domain.Transcript),
		themes:      make(map[int64]domain.Theme),
		settings:    make(map[int64]domain.AnalysisSettings),
		sessions:    make(map[int64]domain.VotingSession),
		votes:       make(map[int64]domain.Vote),
		now:         time.Now,
	}
}

func (m *Memory) Close() {}

// id hands out identifiers from one sequence. Callers hold the write lock.
func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) EnsureDefaultProject(_ context.Context) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.projects) > 0 {
		ids := make([]int64, 0, len(m.projects))
		for id := range m.projects {
			ids = append(ids, id)
		}
		return cloneProject(m.projects[slices.Min(ids)]), nil
	}

	p := domain.Project{
		ID:              m.id(),
		Name:            domain.DefaultProjectName,
		Description:     "Default project for analyzing research transcripts",
		SprintQuestions: []string{},
		CreatedAt:       m.now(),
	}
	m.projects[p.ID] = p
	return cloneProject(p), nil
}

func (m *Memory) GetProject(_ context.Context, id int64) (domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, &domain.NotFoundError{Kind: "project", ID: id}
	}
	return cloneProject(p), nil
}

func (m *Memory) UpdateProject(_ context.Context, id int64, mutate func(*domain.Project) error) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, &domain.NotFoundError{Kind: "project", ID: id}
	}
	p = cloneProject(p)
	if err := mutate(&p); err != nil {
		return domain.Project{}, err
	}
	p.ID = id
	m.projects[id] = p
	return cloneProject(p), nil
}

func (m *Memory) CreateTranscript(_ context.Context, t domain.Transcript) (domain.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	if t.UploadedAt.IsZero() {
		t.UploadedAt = m.now()
	}
	m.transcripts[t.ID] = t
	return t, nil
}

func (m *Memory) ListTranscripts(_ context.Context, projectID int64) ([]domain.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Transcript{}
	for _, t := range m.transcripts {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Transcript) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) DeleteTranscript(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transcripts[id]; !ok {
		return &domain.NotFoundError{Kind: "transcript", ID: id}
	}
	delete(m.transcripts, id)
	return nil
}

func (m *Memory) CreateTheme(_ context.Context, t domain.Theme) (domain.Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	t = normalizeTheme(t.Clone())
	t.ID = m.id()
	t.CreatedAt = now
	t.UpdatedAt = now
	m.themes[t.ID] = t
	return t.Clone(), nil
}

func (m *Memory) GetTheme(_ context.Context, id int64) (domain.Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[id]
	if !ok {
		return domain.Theme{}, &domain.NotFoundError{Kind: "theme", ID: id}
	}
	return t.Clone(), nil
}

func (m *Memory) ListThemes(_ context.Context, projectID int64) ([]domain.Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Theme{}
	for _, t := range m.themes {
		if t.ProjectID == projectID {
			out = append(out, t.Clone())
		}
	}
	slices.SortFunc(out, func(a, b domain.Theme) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) UpdateTheme(_ context.Context, id int64, mutate func(*domain.Theme) error) (domain.Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.themes[id]
	if !ok {
		return domain.Theme{}, &domain.NotFoundError{Kind: "theme", ID: id}
	}
	updated := t.Clone()
	if err := mutate(&updated); err != nil {
		return domain.Theme{}, err
	}
	updated = normalizeTheme(updated)
	updated.ID = t.ID
	updated.ProjectID = t.ProjectID
	updated.CreatedAt = t.CreatedAt
	updated.UpdatedAt = m.now()
	m.themes[id] = updated
	return updated.Clone(), nil
}

func (m *Memory) DeleteTheme(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.themes[id]; !ok {
		return &domain.NotFoundError{Kind: "theme", ID: id}
	}
	delete(m.themes, id)
	return nil
}

func (m *Memory) ClearThemes(_ context.Context, projectID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, t := range m.themes {
		if t.ProjectID == projectID {
			delete(m.themes, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) GetAnalysisSettings(_ context.Context, projectID int64) (domain.AnalysisSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.settings[projectID]; ok {
		return s, nil
	}
	return domain.DefaultAnalysisSettings(projectID), nil
}

func (m *Memory) SaveAnalysisSettings(_ context.Context, s domain.AnalysisSettings) (domain.AnalysisSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.ProjectID] = s
	return s, nil
}

func (m *Memory) CreateVotingSession(_ context.Context, s domain.VotingSession) (domain.VotingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s.ID = m.id()
	s.CreatedAt = now
	if s.StartsAt.IsZero() {
		s.StartsAt = now
	}
	m.sessions[s.ID] = s
	return cloneSession(s), nil
}

func (m *Memory) GetVotingSession(_ context.Context, id int64) (domain.VotingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.VotingSession{}, &domain.NotFoundError{Kind: "voting session", ID: id}
	}
	return cloneSession(s), nil
}

func (m *Memory) ActiveVotingSession(_ context.Context, projectID int64) (*domain.VotingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active *domain.VotingSession
	for _, s := range m.sessions {
		if s.ProjectID == projectID && s.IsActive && (active == nil || s.ID > active.ID) {
			c := cloneSession(s)
			active = &c
		}
	}
	return active, nil
}

func (m *Memory) EndVotingSession(_ context.Context, id int64) (domain.VotingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.VotingSession{}, &domain.NotFoundError{Kind: "voting session", ID: id}
	}
	if s.IsActive {
		ended := m.now()
		s.IsActive = false
		s.EndsAt = &ended
		m.sessions[id] = s
	}
	return cloneSession(s), nil
}

func (m *Memory) InsertVote(_ context.Context, v domain.Vote) (domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = m.id()
	v.CreatedAt = m.now()
	v.ItemIndex = cloneIndex(v.ItemIndex)
	m.votes[v.ID] = v
	return v, nil
}

func (m *Memory) DeleteVote(_ context.Context, v domain.Vote) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := false
	for id, existing := range m.votes {
		if existing.SameBallot(v) {
			delete(m.votes, id)
			deleted = true
		}
	}
	return deleted, nil
}

func (m *Memory) ListVotes(_ context.Context, sessionID int64) ([]domain.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Vote{}
	for _, v := range m.votes {
		if v.SessionID == sessionID {
			v.ItemIndex = cloneIndex(v.ItemIndex)
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b domain.Vote) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func normalizeTheme(t domain.Theme) domain.Theme {
	t.Quotes = nonNilQuotes(t.Quotes)
	t.HMWQuestions = nonNil(t.HMWQuestions)
	t.AISuggestedSteps = nonNil(t.AISuggestedSteps)
	return t
}

func cloneProject(p domain.Project) domain.Project {
	p.SprintQuestions = append([]string{}, p.SprintQuestions...)
	return p
}

func cloneSession(s domain.VotingSession) domain.VotingSession {
	if s.EndsAt != nil {
		e := *s.EndsAt
		s.EndsAt = &e
	}
	return s
}

func cloneIndex(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
