package extractor

import "github.com/MikeSquared-Agency/themesync/internal/domain"

// Request selects a template and supplies the text to analyse.
type Request struct {
	Content        string
	TranscriptType string
	SprintGoal     string
	TemplateKey    string // overrides TranscriptType when set
}

// ExtractedTheme is a model-produced insight before it is persisted.
type ExtractedTheme struct {
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	Color            string         `json:"color"`
	Quotes           []domain.Quote `json:"quotes"`
	HMWQuestions     []string       `json:"hmwQuestions"`
	AISuggestedSteps []string       `json:"aiSuggestedSteps"`
}

// Theme builds the record persisted at the given position.
func (e ExtractedTheme) Theme(projectID int64, position int) domain.Theme {
	return domain.Theme{
		ProjectID:        projectID,
		Title:            e.Title,
		Description:      e.Description,
		Color:            e.Color,
		Category:         e.Category,
		Quotes:           nonNilQuotes(e.Quotes),
		HMWQuestions:     nonNil(e.HMWQuestions),
		AISuggestedSteps: nonNil(e.AISuggestedSteps),
		Position:         position,
	}
}

// Refinement is the model's proposed title and description for a theme.
type Refinement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
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
