package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// runStoreSuite exercises the behavior every Store backend must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("default project", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p, err := s.EnsureDefaultProject(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultProjectName, p.Name)

		again, err := s.EnsureDefaultProject(ctx)
		require.NoError(t, err)
		assert.Equal(t, p.ID, again.ID)

		updated, err := s.UpdateProject(ctx, p.ID, func(p *domain.Project) error {
			p.SprintGoal = "Ship onboarding"
			p.SprintQuestions = []string{"Will users finish setup?"}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Ship onboarding", updated.SprintGoal)

		got, err := s.GetProject(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Will users finish setup?"}, got.SprintQuestions)

		_, err = s.GetProject(ctx, p.ID+1000)
		assertNotFound(t, err)
	})

	t.Run("transcripts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustProject(t, s)

		a, err := s.CreateTranscript(ctx, domain.Transcript{ProjectID: p.ID, Filename: "a.txt", Content: "alpha", FileType: "txt"})
		require.NoError(t, err)
		b, err := s.CreateTranscript(ctx, domain.Transcript{ProjectID: p.ID, Filename: "b.md", Content: "beta", FileType: "md"})
		require.NoError(t, err)
		assert.False(t, a.UploadedAt.IsZero())

		list, err := s.ListTranscripts(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, a.ID, list[0].ID)

		require.NoError(t, s.DeleteTranscript(ctx, b.ID))
		assertNotFound(t, s.DeleteTranscript(ctx, b.ID))

		list, err = s.ListTranscripts(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("themes ordered by position", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustProject(t, s)

		var ids []int64
		for i, title := range []string{"first", "second", "third"} {
			th, err := s.CreateTheme(ctx, domain.Theme{
				ProjectID: p.ID, Title: title, Category: domain.CategoryGeneric,
				Color: domain.ColorGray, Position: i,
			})
			require.NoError(t, err)
			assert.NotNil(t, th.Quotes)
			ids = append(ids, th.ID)
		}

		// Deleting does not renumber the remaining positions.
		require.NoError(t, s.DeleteTheme(ctx, ids[1]))
		list, err := s.ListThemes(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "first", list[0].Title)
		assert.Equal(t, 0, list[0].Position)
		assert.Equal(t, "third", list[1].Title)
		assert.Equal(t, 2, list[1].Position)

		assertNotFound(t, s.DeleteTheme(ctx, ids[1]))
		_, err = s.GetTheme(ctx, ids[1])
		assertNotFound(t, err)
	})

	t.Run("update theme", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustProject(t, s)

		th, err := s.CreateTheme(ctx, domain.Theme{
			ProjectID: p.ID, Title: "t", Category: domain.CategoryPainPoints, Color: domain.ColorRed,
			Quotes:       []domain.Quote{{Text: "q", Source: "User 1", TranscriptID: 99}},
			HMWQuestions: []string{"a", "b"},
		})
		require.NoError(t, err)

		updated, err := s.UpdateTheme(ctx, th.ID, func(t *domain.Theme) error {
			t.HMWQuestions[1] = "B"
			t.Title = "renamed"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "B"}, updated.HMWQuestions)
		assert.False(t, updated.UpdatedAt.Before(th.UpdatedAt))

		got, err := s.GetTheme(ctx, th.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
		assert.Equal(t, int64(99), got.Quotes[0].TranscriptID)

		boom := errors.New("boom")
		_, err = s.UpdateTheme(ctx, th.ID, func(t *domain.Theme) error {
			t.Title = "discarded"
			return boom
		})
		assert.ErrorIs(t, err, boom)
		got, err = s.GetTheme(ctx, th.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)

		_, err = s.UpdateTheme(ctx, th.ID+1000, func(*domain.Theme) error { return nil })
		assertNotFound(t, err)
	})

	t.Run("clear themes", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustProject(t, s)

		for i := 0; i < 3; i++ {
			_, err := s.CreateTheme(ctx, domain.Theme{ProjectID: p.ID, Title: "x", Category: "generic", Color: domain.ColorGray, Position: i})
			require.NoError(t, err)
		}
		n, err := s.ClearThemes(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		list, err := s.ListThemes(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("analysis settings", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustProject(t, s)

		got, err := s.GetAnalysisSettings(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultAnalysisSettings(p.ID), got)

		want := domain.AnalysisSettings{ProjectID: p.ID, Emotions: true, ThemeCount: "8-10"}
		_, err = s.SaveAnalysisSettings(ctx, want)
		require.NoError(t, err)
		got, err = s.GetAnalysisSettings(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("voting sessions", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustProject(t, s)

		active, err := s.ActiveVotingSession(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, active)

		vs, err := s.CreateVotingSession(ctx, domain.VotingSession{ProjectID: p.ID, Name: "Round 1", Duration: 5, IsActive: true})
		require.NoError(t, err)
		assert.False(t, vs.StartsAt.IsZero())
		assert.Nil(t, vs.EndsAt)

		active, err = s.ActiveVotingSession(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, vs.ID, active.ID)

		ended, err := s.EndVotingSession(ctx, vs.ID)
		require.NoError(t, err)
		assert.False(t, ended.IsActive)
		require.NotNil(t, ended.EndsAt)

		again, err := s.EndVotingSession(ctx, vs.ID)
		require.NoError(t, err)
		require.NotNil(t, again.EndsAt)
		assert.True(t, ended.EndsAt.Equal(*again.EndsAt))

		_, err = s.EndVotingSession(ctx, vs.ID+1000)
		assertNotFound(t, err)
	})

	t.Run("votes by natural key", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustProject(t, s)

		vs, err := s.CreateVotingSession(ctx, domain.VotingSession{ProjectID: p.ID, Name: "r", Duration: 5, IsActive: true})
		require.NoError(t, err)

		idx := 1
		hmw := domain.Vote{SessionID: vs.ID, ThemeID: 10, ItemType: domain.ItemHMW, ItemIndex: &idx, VoterToken: "alice"}
		card := domain.Vote{SessionID: vs.ID, ThemeID: 10, ItemType: domain.ItemTheme, VoterToken: "alice"}

		_, err = s.InsertVote(ctx, hmw)
		require.NoError(t, err)
		_, err = s.InsertVote(ctx, card)
		require.NoError(t, err)

		votes, err := s.ListVotes(ctx, vs.ID)
		require.NoError(t, err)
		require.Len(t, votes, 2)
		require.NotNil(t, votes[0].ItemIndex)
		assert.Equal(t, 1, *votes[0].ItemIndex)
		assert.Nil(t, votes[1].ItemIndex)

		other := 2
		deleted, err := s.DeleteVote(ctx, domain.Vote{SessionID: vs.ID, ThemeID: 10, ItemType: domain.ItemHMW, ItemIndex: &other, VoterToken: "alice"})
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = s.DeleteVote(ctx, card)
		require.NoError(t, err)
		assert.True(t, deleted)

		votes, err = s.ListVotes(ctx, vs.ID)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, domain.ItemHMW, votes[0].ItemType)
	})
}

func mustProject(t *testing.T, s Store) domain.Project {
	t.Helper()
	p, err := s.EnsureDefaultProject(context.Background())
	require.NoError(t, err)
	return p
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var nf *domain.NotFoundError
	assert.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
}
