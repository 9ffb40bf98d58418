package domain

import (
	"fmt"
	"slices"
	"time"
)

// DefaultProjectName is the name of the project created at startup.
const DefaultProjectName = "Research Analysis Project"

// Theme categories as returned by the model.
const (
	CategoryOpportunities = "opportunities"
	CategoryPainPoints    = "pain_points"
	CategoryIdeasHMWs     = "ideas_hmws"
	CategoryMiscellaneous = "miscellaneous"
	CategoryGeneric       = "generic"
)

// Transcript types. Any other string is accepted and falls back to the
// general research template.
const (
	TranscriptExpertInterviews = "expert_interviews"
	TranscriptTestingNotes     = "testing_notes"
	TranscriptGeneralResearch  = "general_research"
)

// Category colors.
const (
	ColorGreen  = "#22c55e"
	ColorRed    = "#ef4444"
	ColorYellow = "#eab308"
	ColorGray   = "#6b7280"
)

var categoryColors = map[string]string{
	CategoryOpportunities: ColorGreen,
	CategoryPainPoints:    ColorRed,
	CategoryIdeasHMWs:     ColorYellow,
	CategoryMiscellaneous: ColorYellow,
	CategoryGeneric:       ColorGray,
}

// CategoryColor returns the display color for a category. Unknown
// categories are gray.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return ColorGray
}

type Project struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	SprintGoal      string    `json:"sprintGoal,omitempty"`
	SprintQuestions []string  `json:"sprintQuestions,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Transcript struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"projectId"`
	Filename       string    `json:"filename"`
	Content        string    `json:"content"`
	FileType       string    `json:"fileType"`
	TranscriptType string    `json:"transcriptType,omitempty"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

// Quote is a verbatim excerpt supporting a theme. TranscriptID is not
// enforced and may point at a deleted transcript.
type Quote struct {
	Text         string `json:"text"`
	Source       string `json:"source"`
	TranscriptID int64  `json:"transcriptId"`
}

// Theme is a single extracted insight.
type Theme struct {
	ID               int64     `json:"id"`
	ProjectID        int64     `json:"projectId"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Color            string    `json:"color"`
	Quotes           []Quote   `json:"quotes"`
	HMWQuestions     []string  `json:"hmwQuestions"`
	AISuggestedSteps []string  `json:"aiSuggestedSteps"`
	Category         string    `json:"category"`
	Position         int       `json:"position"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate slices freely.
func (t Theme) Clone() Theme {
	c := t
	c.Quotes = slices.Clone(t.Quotes)
	c.HMWQuestions = slices.Clone(t.HMWQuestions)
	c.AISuggestedSteps = slices.Clone(t.AISuggestedSteps)
	return c
}

type AnalysisSettings struct {
	ProjectID       int64  `json:"projectId"`
	PainPoints      bool   `json:"painPoints"`
	FeatureRequests bool   `json:"featureRequests"`
	UserBehaviors   bool   `json:"userBehaviors"`
	Emotions        bool   `json:"emotions"`
	ThemeCount      string `json:"themeCount"`
}

// DefaultAnalysisSettings returns the settings used before a project saves its own.
func DefaultAnalysisSettings(projectID int64) AnalysisSettings {
	return AnalysisSettings{
		ProjectID:       projectID,
		PainPoints:      true,
		FeatureRequests: true,
		ThemeCount:      "5-7",
	}
}

type VotingSession struct {
	ID        int64      `json:"id"`
	ProjectID int64      `json:"projectId"`
	Name      string     `json:"name"`
	Duration  int        `json:"duration"` // minutes
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	StartsAt  time.Time  `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt"`
}

// ExpiresAt is when the client-side countdown reaches zero.
func (s VotingSession) ExpiresAt() time.Time {
	return s.StartsAt.Add(time.Duration(s.Duration) * time.Minute)
}

// Vote item types.
const (
	ItemTheme = "theme"
	ItemHMW   = "hmw"
	ItemStep  = "step"
)

type Vote struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"sessionId"`
	ThemeID    int64     `json:"themeId"`
	ItemType   string    `json:"itemType"`
	ItemIndex  *int      `json:"itemIndex"`
	VoterToken string    `json:"voterToken"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Key is the aggregation key of the vote.
func (v Vote) Key() VoteKey {
	k := VoteKey{ThemeID: v.ThemeID, ItemType: v.ItemType}
	if v.ItemIndex != nil {
		k.Index = *v.ItemIndex
		k.Indexed = true
	}
	return k
}

// SameBallot reports whether two votes share the natural key
// (session, theme, item type, item index, voter).
func (v Vote) SameBallot(o Vote) bool {
	return v.SessionID == o.SessionID && v.VoterToken == o.VoterToken && v.Key() == o.Key()
}

// VoteKey groups votes for counting. Indexed is false for theme votes.
type VoteKey struct {
	ThemeID  int64
	ItemType string
	Index    int
	Indexed  bool
}

func (k VoteKey) String() string {
	if !k.Indexed {
		return fmt.Sprintf("%d-%s", k.ThemeID, k.ItemType)
	}
	return fmt.Sprintf("%d-%s-%d", k.ThemeID, k.ItemType, k.Index)
}

// ThemeKey is the key for a vote on the theme card itself.
func ThemeKey(themeID int64) VoteKey {
	return VoteKey{ThemeID: themeID, ItemType: ItemTheme}
}

// ItemKey is the key for a vote on one HMW question or suggested step.
func ItemKey(themeID int64, itemType string, index int) VoteKey {
	return VoteKey{ThemeID: themeID, ItemType: itemType, Index: index, Indexed: true}
}
