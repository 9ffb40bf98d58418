package themes

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/events"
	"github.com/MikeSquared-Agency/themesync/internal/store"
)

// Patch is a partial theme update. Nil fields are left unchanged.
type Patch struct {
	Title            *string         `json:"title"`
	Description      *string         `json:"description"`
	Color            *string         `json:"color"`
	Quotes           *[]domain.Quote `json:"quotes"`
	Position         *int            `json:"position"`
	Category         *string         `json:"category"`
	HMWQuestions     *[]string       `json:"hmwQuestions"`
	AISuggestedSteps *[]string       `json:"aiSuggestedSteps"`
}

// Validate rejects a patch that would blank the title.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return domain.Invalid("title", "must not be empty")
	}
	if p.Position != nil && *p.Position < 0 {
		return domain.Invalid("position", "must not be negative")
	}
	return nil
}

func (p Patch) apply(t *domain.Theme) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Quotes != nil {
		t.Quotes = slices.Clone(*p.Quotes)
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Category != nil {
		t.Category = *p.Category
		// An explicit color in the same patch wins.
		if p.Color == nil {
			t.Color = domain.CategoryColor(t.Category)
		}
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.HMWQuestions != nil {
		t.HMWQuestions = slices.Clone(*p.HMWQuestions)
	}
	if p.AISuggestedSteps != nil {
		t.AISuggestedSteps = slices.Clone(*p.AISuggestedSteps)
	}
}

// Service owns theme mutations on top of the store.
type Service struct {
	store  store.Store
	events events.Publisher
	logger *slog.Logger
}

func NewService(s store.Store, pub events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: s, events: pub, logger: logger}
}

// Create stores a manually added theme. Category defaults to generic and
// color follows category unless given.
func (s *Service) Create(ctx context.Context, projectID int64, p Patch) (domain.Theme, error) {
	if p.Title == nil {
		return domain.Theme{}, domain.Invalid("title", "is required")
	}
	if err := p.Validate(); err != nil {
		return domain.Theme{}, err
	}

	t := domain.Theme{ProjectID: projectID, Category: domain.CategoryGeneric}
	t.Color = domain.CategoryColor(t.Category)
	p.apply(&t)

	created, err := s.store.CreateTheme(ctx, t)
	if err != nil {
		return domain.Theme{}, err
	}
	events.Emit(s.events, s.logger, events.SubjectThemeUpdated, events.ThemeChanged{ThemeID: created.ID, ProjectID: projectID})
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Theme, error) {
	return s.store.GetTheme(ctx, id)
}

func (s *Service) List(ctx context.Context, projectID int64) ([]domain.Theme, error) {
	return s.store.ListThemes(ctx, projectID)
}

// Update merges the non-nil fields of p into the theme.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (domain.Theme, error) {
	if err := p.Validate(); err != nil {
		return domain.Theme{}, err
	}
	updated, err := s.store.UpdateTheme(ctx, id, func(t *domain.Theme) error {
		p.apply(t)
		return nil
	})
	if err != nil {
		return domain.Theme{}, err
	}
	s.changed(updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	t, err := s.store.GetTheme(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTheme(ctx, id); err != nil {
		return err
	}
	events.Emit(s.events, s.logger, events.SubjectThemeDeleted, events.ThemeChanged{ThemeID: id, ProjectID: t.ProjectID})
	return nil
}

// SetListItem replaces one HMW question or suggested step.
func (s *Service) SetListItem(ctx context.Context, id int64, list string, index int, value string) (domain.Theme, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.Theme{}, &domain.ValidationError{
			Message: "New value is required",
			Fields:  map[string]string{"newValue": "is required"},
		}
	}
	if err := checkList(list); err != nil {
		return domain.Theme{}, err
	}

	updated, err := s.store.UpdateTheme(ctx, id, func(t *domain.Theme) error {
		items := listOf(t, list)
		if index < 0 || index >= len(*items) {
			return &domain.IndexError{List: listName(list), Index: index, Len: len(*items)}
		}
		(*items)[index] = value
		return nil
	})
	if err != nil {
		return domain.Theme{}, err
	}
	s.changed(updated)
	return updated, nil
}

// RemoveListItem deletes one HMW question or suggested step, keeping the order of the rest.
func (s *Service) RemoveListItem(ctx context.Context, id int64, list string, index int) (domain.Theme, error) {
	if err := checkList(list); err != nil {
		return domain.Theme{}, err
	}

	updated, err := s.store.UpdateTheme(ctx, id, func(t *domain.Theme) error {
		items := listOf(t, list)
		if index < 0 || index >= len(*items) {
			return &domain.IndexError{List: listName(list), Index: index, Len: len(*items)}
		}
		*items = slices.Delete(*items, index, index+1)
		return nil
	})
	if err != nil {
		return domain.Theme{}, err
	}
	s.changed(updated)
	return updated, nil
}

func (s *Service) changed(t domain.Theme) {
	events.Emit(s.events, s.logger, events.SubjectThemeUpdated, events.ThemeChanged{ThemeID: t.ID, ProjectID: t.ProjectID})
}

func checkList(list string) error {
	if list != domain.ItemHMW && list != domain.ItemStep {
		return &domain.ValidationError{
			Message: "Invalid item type",
			Fields:  map[string]string{"itemType": "must be hmw or step"},
		}
	}
	return nil
}

func listOf(t *domain.Theme, list string) *[]string {
	if list == domain.ItemHMW {
		return &t.HMWQuestions
	}
	return &t.AISuggestedSteps
}

func listName(list string) string {
	if list == domain.ItemHMW {
		return "HMW question"
	}
	return "AI step"
}
