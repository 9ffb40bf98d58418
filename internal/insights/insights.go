// Package insights filters, sorts and summarizes themes for the board view.
package insights

import (
	"cmp"
	"slices"
	"strings"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Sort orders accepted by Sort.
const (
	SortPosition = "position"
	SortAZ       = "az"
	SortCategory = "category"
)

// Filter narrows a theme list. A nil Has* field means "don't care".
type Filter struct {
	Search           string
	Category         string
	HasQuotes        *bool
	HasHMWs          *bool
	HasAISuggestions *bool
}

// Active reports how many criteria are set.
func (f Filter) Active() int {
	n := 0
	if strings.TrimSpace(f.Search) != "" {
		n++
	}
	if f.Category != "" && f.Category != CategoryAll {
		n++
	}
	for _, b := range []*bool{f.HasQuotes, f.HasHMWs, f.HasAISuggestions} {
		if b != nil {
			n++
		}
	}
	return n
}

// Match reports whether t satisfies every criterion.
func (f Filter) Match(t domain.Theme) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" && !matchesSearch(t, q) {
		return false
	}
	if f.Category != "" && f.Category != CategoryAll && t.Category != f.Category {
		return false
	}
	if !wants(f.HasQuotes, len(t.Quotes) > 0) {
		return false
	}
	if !wants(f.HasHMWs, len(t.HMWQuestions) > 0) {
		return false
	}
	return wants(f.HasAISuggestions, len(t.AISuggestedSteps) > 0)
}

func wants(want *bool, has bool) bool {
	return want == nil || *want == has
}

func matchesSearch(t domain.Theme, q string) bool {
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }
	if contains(t.Title) || contains(t.Description) {
		return true
	}
	for _, quote := range t.Quotes {
		if contains(quote.Text) {
			return true
		}
	}
	return slices.ContainsFunc(t.HMWQuestions, contains) || slices.ContainsFunc(t.AISuggestedSteps, contains)
}

// Apply returns the themes matching f, in their original order. Never nil.
func (f Filter) Apply(themes []domain.Theme) []domain.Theme {
	out := make([]domain.Theme, 0, len(themes))
	for _, t := range themes {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stats is the summary shown above the board.
type Stats struct {
	Themes        int            `json:"themes"`
	Quotes        int            `json:"quotes"`
	HMWQuestions  int            `json:"hmwQuestions"`
	AISuggestions int            `json:"aiSuggestions"`
	ByCategory    map[string]int `json:"byCategory"`
}

func Summarize(themes []domain.Theme) Stats {
	s := Stats{Themes: len(themes), ByCategory: map[string]int{}}
	for _, t := range themes {
		s.Quotes += len(t.Quotes)
		s.HMWQuestions += len(t.HMWQuestions)
		s.AISuggestions += len(t.AISuggestedSteps)
		s.ByCategory[t.Category]++
	}
	return s
}

var categoryRank = map[string]int{
	domain.CategoryOpportunities: 0,
	domain.CategoryPainPoints:    1,
	domain.CategoryIdeasHMWs:     2,
	domain.CategoryMiscellaneous: 3,
	domain.CategoryGeneric:       4,
}

func rank(category string) int {
	if r, ok := categoryRank[category]; ok {
		return r
	}
	return len(categoryRank)
}

// Sort returns a sorted copy. Unknown orders fall back to position.
func Sort(themes []domain.Theme, order string) []domain.Theme {
	out := slices.Clone(themes)
	byPosition := func(a, b domain.Theme) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	}
	switch order {
	case SortAZ:
		slices.SortStableFunc(out, func(a, b domain.Theme) int {
			return cmp.Or(cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)), byPosition(a, b))
		})
	case SortCategory:
		slices.SortStableFunc(out, func(a, b domain.Theme) int {
			return cmp.Or(cmp.Compare(rank(a.Category), rank(b.Category)), byPosition(a, b))
		})
	default:
		slices.SortStableFunc(out, byPosition)
	}
	return out
}
