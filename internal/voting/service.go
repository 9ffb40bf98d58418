package voting

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/events"
	"github.com/MikeSquared-Agency/themesync/internal/store"
)

// VoteRequest identifies one ballot.
type VoteRequest struct {
	SessionID  int64  `json:"sessionId"`
	ThemeID    int64  `json:"themeId"`
	ItemType   string `json:"itemType"`
	ItemIndex  *int   `json:"itemIndex"`
	VoterToken string `json:"voterToken"`
}

func (r VoteRequest) vote() domain.Vote {
	return domain.Vote{
		SessionID:  r.SessionID,
		ThemeID:    r.ThemeID,
		ItemType:   r.ItemType,
		ItemIndex:  r.ItemIndex,
		VoterToken: r.VoterToken,
	}
}

func (r VoteRequest) validate() error {
	fields := map[string]string{}
	if r.SessionID <= 0 {
		fields["sessionId"] = "is required"
	}
	if r.ThemeID <= 0 {
		fields["themeId"] = "is required"
	}
	if strings.TrimSpace(r.VoterToken) == "" {
		fields["voterToken"] = "is required"
	}
	switch r.ItemType {
	case domain.ItemTheme:
		if r.ItemIndex != nil {
			fields["itemIndex"] = "must be omitted for theme votes"
		}
	case domain.ItemHMW, domain.ItemStep:
		if r.ItemIndex == nil {
			fields["itemIndex"] = "is required for " + r.ItemType + " votes"
		} else if *r.ItemIndex < 0 {
			fields["itemIndex"] = "must not be negative"
		}
	default:
		fields["itemType"] = "must be theme, hmw or step"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Message: "invalid vote", Fields: fields}
	}
	return nil
}

// Tally is the aggregated view of a session's votes.
type Tally struct {
	// Counts is keyed by VoteKey.String().
	Counts map[string]int `json:"voteCounts"`
	// UserVotes lists the keys the requesting voter holds, sorted.
	UserVotes []string `json:"userVotes"`
}

// Count returns the number of votes for k.
func (t Tally) Count(k domain.VoteKey) int {
	return t.Counts[k.String()]
}

// Standing is one theme's position in the final results.
type Standing struct {
	ThemeID int64
	Title   string
	Votes   int
}

// Announcer receives the final standings when a session ends.
type Announcer interface {
	AnnounceResults(ctx context.Context, session domain.VotingSession, standings []Standing) error
}

// Service runs voting sessions. Mutations are serialized so that a project
// never ends up with two active sessions.
type Service struct {
	mu        sync.Mutex
	store     store.Store
	events    events.Publisher
	announcer Announcer
	logger    *slog.Logger
}

func NewService(s store.Store, pub events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: s, events: pub, logger: logger}
}

// SetAnnouncer registers where final results are posted. nil disables it.
func (s *Service) SetAnnouncer(a Announcer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcer = a
}

// CreateSession ends the project's active session, if any, and starts a new one.
func (s *Service) CreateSession(ctx context.Context, projectID int64, name string, duration int) (domain.VotingSession, error) {
	name = strings.TrimSpace(name)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if duration <= 0 {
		fields["duration"] = "must be a positive number of minutes"
	}
	if len(fields) > 0 {
		return domain.VotingSession{}, &domain.ValidationError{Message: "Name and duration are required", Fields: fields}
	}

	s.mu.Lock()
	created, post, err := s.createLocked(ctx, projectID, name, duration)
	s.mu.Unlock()
	post()
	return created, err
}

func (s *Service) createLocked(ctx context.Context, projectID int64, name string, duration int) (domain.VotingSession, func(), error) {
	post := func() {}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return domain.VotingSession{}, post, err
	}

	active, err := s.store.ActiveVotingSession(ctx, projectID)
	if err != nil {
		return domain.VotingSession{}, post, err
	}
	if active != nil {
		if _, post, err = s.endLocked(ctx, active.ID); err != nil {
			return domain.VotingSession{}, post, fmt.Errorf("end previous session: %w", err)
		}
	}

	created, err := s.store.CreateVotingSession(ctx, domain.VotingSession{
		ProjectID: projectID,
		Name:      name,
		Duration:  duration,
		IsActive:  true,
	})
	if err != nil {
		return domain.VotingSession{}, post, err
	}

	s.logger.Info("voting session started", "session_id", created.ID, "project_id", projectID, "duration_min", duration)
	events.Emit(s.events, s.logger, events.SubjectSessionCreated, events.SessionChanged{
		SessionID: created.ID, ProjectID: projectID, Name: created.Name, IsActive: true,
	})
	return created, post, nil
}

// ActiveSession returns the project's active session or nil.
func (s *Service) ActiveSession(ctx context.Context, projectID int64) (*domain.VotingSession, error) {
	return s.store.ActiveVotingSession(ctx, projectID)
}

// EndSession ends the session once. Ending an ended session returns it unchanged.
func (s *Service) EndSession(ctx context.Context, id int64) (domain.VotingSession, error) {
	s.mu.Lock()
	ended, post, err := s.endLocked(ctx, id)
	s.mu.Unlock()
	post()
	return ended, err
}

// endLocked ends the session and returns the results announcement, which
// the caller runs after releasing s.mu. The returned func is never nil.
func (s *Service) endLocked(ctx context.Context, id int64) (domain.VotingSession, func(), error) {
	noop := func() {}
	before, err := s.store.GetVotingSession(ctx, id)
	if err != nil {
		return domain.VotingSession{}, noop, err
	}
	ended, err := s.store.EndVotingSession(ctx, id)
	if err != nil {
		return domain.VotingSession{}, noop, err
	}
	if !before.IsActive {
		return ended, noop, nil
	}

	s.logger.Info("voting session ended", "session_id", id, "project_id", ended.ProjectID)
	events.Emit(s.events, s.logger, events.SubjectSessionEnded, events.SessionChanged{
		SessionID: id, ProjectID: ended.ProjectID, Name: ended.Name, IsActive: false,
	})
	return ended, s.announcement(ctx, ended), nil
}

// announcement snapshots the standings and returns the post to the announcer.
func (s *Service) announcement(ctx context.Context, session domain.VotingSession) func() {
	a := s.announcer
	if a == nil {
		return func() {}
	}
	standings, err := s.Standings(ctx, session)
	if err != nil {
		s.logger.Warn("compute standings failed", "session_id", session.ID, "error", err)
		return func() {}
	}
	return func() {
		if err := a.AnnounceResults(ctx, session, standings); err != nil {
			s.logger.Warn("announce voting results failed", "session_id", session.ID, "error", err)
		}
	}
}

// Cast records a vote, replacing an identical ballot if the voter already cast it.
func (s *Service) Cast(ctx context.Context, req VoteRequest) (domain.Vote, error) {
	if err := req.validate(); err != nil {
		return domain.Vote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireActive(ctx, req.SessionID)
	if err != nil {
		return domain.Vote{}, err
	}
	if err := s.requireTheme(ctx, session, req.ThemeID); err != nil {
		return domain.Vote{}, err
	}
	if _, err := s.store.DeleteVote(ctx, req.vote()); err != nil {
		return domain.Vote{}, err
	}
	v, err := s.store.InsertVote(ctx, req.vote())
	if err != nil {
		return domain.Vote{}, err
	}
	s.voteChanged(req, true)
	return v, nil
}

// Remove deletes the voter's ballot if present and reports whether one existed.
func (s *Service) Remove(ctx context.Context, req VoteRequest) (bool, error) {
	if err := req.validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.store.DeleteVote(ctx, req.vote())
	if err != nil {
		return false, err
	}
	if deleted {
		s.voteChanged(req, false)
	}
	return deleted, nil
}

// Toggle removes the voter's ballot if present, otherwise casts it. It
// returns whether the voter holds the vote afterwards.
func (s *Service) Toggle(ctx context.Context, req VoteRequest) (bool, error) {
	if err := req.validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireActive(ctx, req.SessionID)
	if err != nil {
		return false, err
	}
	deleted, err := s.store.DeleteVote(ctx, req.vote())
	if err != nil {
		return false, err
	}
	if deleted {
		s.voteChanged(req, false)
		return false, nil
	}
	if err := s.requireTheme(ctx, session, req.ThemeID); err != nil {
		return false, err
	}
	if _, err := s.store.InsertVote(ctx, req.vote()); err != nil {
		return false, err
	}
	s.voteChanged(req, true)
	return true, nil
}

func (s *Service) requireActive(ctx context.Context, sessionID int64) (domain.VotingSession, error) {
	session, err := s.store.GetVotingSession(ctx, sessionID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return domain.VotingSession{}, &domain.ValidationError{Message: "Invalid or inactive voting session"}
		}
		return domain.VotingSession{}, err
	}
	if !session.IsActive {
		return domain.VotingSession{}, &domain.ValidationError{Message: "Invalid or inactive voting session"}
	}
	return session, nil
}

// requireTheme rejects ballots for themes outside the session's project.
func (s *Service) requireTheme(ctx context.Context, session domain.VotingSession, themeID int64) error {
	t, err := s.store.GetTheme(ctx, themeID)
	if err != nil {
		return err
	}
	if t.ProjectID != session.ProjectID {
		return &domain.NotFoundError{Kind: "theme", ID: themeID}
	}
	return nil
}

func (s *Service) voteChanged(req VoteRequest, voted bool) {
	events.Emit(s.events, s.logger, events.SubjectVoteChanged, events.VoteChanged{
		SessionID: req.SessionID,
		ThemeID:   req.ThemeID,
		Key:       req.vote().Key().String(),
		Voted:     voted,
	})
}

// ListVotes returns every vote recorded in the session.
func (s *Service) ListVotes(ctx context.Context, sessionID int64) ([]domain.Vote, error) {
	if _, err := s.store.GetVotingSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListVotes(ctx, sessionID)
}

// Counts aggregates the session's votes. voterToken may be empty, in which
// case UserVotes is empty.
func (s *Service) Counts(ctx context.Context, sessionID int64, voterToken string) (Tally, error) {
	votes, err := s.ListVotes(ctx, sessionID)
	if err != nil {
		return Tally{}, err
	}
	return Aggregate(votes, voterToken), nil
}

// Aggregate counts votes per key and collects the keys held by voterToken.
func Aggregate(votes []domain.Vote, voterToken string) Tally {
	t := Tally{Counts: map[string]int{}, UserVotes: []string{}}
	for _, v := range votes {
		key := v.Key().String()
		t.Counts[key]++
		if voterToken != "" && v.VoterToken == voterToken {
			t.UserVotes = append(t.UserVotes, key)
		}
	}
	slices.Sort(t.UserVotes)
	t.UserVotes = slices.Compact(t.UserVotes)
	return t
}

// Standings ranks the project's themes by card votes, most first. Ties keep
// board order.
func (s *Service) Standings(ctx context.Context, session domain.VotingSession) ([]Standing, error) {
	votes, err := s.store.ListVotes(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	themes, err := s.store.ListThemes(ctx, session.ProjectID)
	if err != nil {
		return nil, err
	}
	tally := Aggregate(votes, "")

	standings := make([]Standing, 0, len(themes))
	for _, th := range themes {
		standings = append(standings, Standing{
			ThemeID: th.ID,
			Title:   th.Title,
			Votes:   tally.Count(domain.ThemeKey(th.ID)),
		})
	}
	slices.SortStableFunc(standings, func(a, b Standing) int {
		return cmp.Compare(b.Votes, a.Votes)
	})
	return standings, nil
}
