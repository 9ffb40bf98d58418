package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// Data is the board snapshot rendered by the sprint exports.
type Data struct {
	Themes         []domain.Theme
	TranscriptType string
	SprintGoal     string
	ExportDate     string
	// VoteCounts is keyed by domain.VoteKey.String(). May be nil.
	VoteCounts map[string]int
}

func (d Data) votes(k domain.VoteKey) int {
	return d.VoteCounts[k.String()]
}

func voteSuffix(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(" (%d votes)", n)
}

// Text renders the plain-text sprint report.
func Text(d Data) string {
	var sb strings.Builder

	sb.WriteString("SPRINT INSIGHTS EXPORT\n")
	fmt.Fprintf(&sb, "Generated: %s\n", d.ExportDate)
	if d.SprintGoal != "" {
		fmt.Fprintf(&sb, "Sprint Goal: %s\n", d.SprintGoal)
	}
	fmt.Fprintf(&sb, "Transcript Type: %s\n", transcriptTypeLabel(d.TranscriptType))
	fmt.Fprintf(&sb, "Total Insights: %d\n\n", len(d.Themes))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, t := range d.Themes {
		fmt.Fprintf(&sb, "%d. %s\n\n", i+1, strings.ToUpper(CategoryLabel(t.Category, d.TranscriptType)))

		sb.WriteString(t.Title + "\n")
		if t.Description != "" {
			sb.WriteString(t.Description + "\n")
		}
		if n := d.votes(domain.ThemeKey(t.ID)); n > 0 {
			fmt.Fprintf(&sb, "VOTES: %d\n", n)
		}
		sb.WriteString("\n")

		if len(t.Quotes) > 0 {
			sb.WriteString("QUOTES:\n")
			for _, q := range t.Quotes {
				fmt.Fprintf(&sb, "- \"%s\" - %s\n", q.Text, q.Source)
			}
			sb.WriteString("\n")
		}

		if len(t.HMWQuestions) > 0 || len(t.AISuggestedSteps) > 0 {
			fmt.Fprintf(&sb, "AI SUGGESTIONS (%s):\n", strings.ToUpper(suggestionLabel(d.TranscriptType)))
			for j, hmw := range t.HMWQuestions {
				fmt.Fprintf(&sb, "- %s%s\n", hmw, voteSuffix(d.votes(domain.ItemKey(t.ID, domain.ItemHMW, j))))
			}
			for j, step := range t.AISuggestedSteps {
				fmt.Fprintf(&sb, "- %s%s\n", step, voteSuffix(d.votes(domain.ItemKey(t.ID, domain.ItemStep, j))))
			}
			sb.WriteString("\n")
		}

		sb.WriteString(strings.Repeat("-", 30) + "\n\n")
	}
	return sb.String()
}

// Markdown renders the sprint report as Markdown.
func Markdown(d Data) string {
	var sb strings.Builder

	sb.WriteString("# Sprint Insights Export\n\n")
	fmt.Fprintf(&sb, "**Generated:** %s  \n", d.ExportDate)
	if d.SprintGoal != "" {
		fmt.Fprintf(&sb, "**Sprint Goal:** %s  \n", d.SprintGoal)
	}
	fmt.Fprintf(&sb, "**Transcript Type:** %s  \n", transcriptTypeLabel(d.TranscriptType))
	fmt.Fprintf(&sb, "**Total Insights:** %d\n\n", len(d.Themes))
	sb.WriteString("---\n\n")

	for i, t := range d.Themes {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, CategoryLabel(t.Category, d.TranscriptType))
		fmt.Fprintf(&sb, "### %s\n\n", t.Title)
		if t.Description != "" {
			sb.WriteString(t.Description + "\n\n")
		}
		if n := d.votes(domain.ThemeKey(t.ID)); n > 0 {
			fmt.Fprintf(&sb, "**Votes:** %d\n\n", n)
		}

		if len(t.Quotes) > 0 {
			sb.WriteString("#### Quotes\n\n")
			for _, q := range t.Quotes {
				fmt.Fprintf(&sb, "> \"%s\" — *%s*\n\n", q.Text, q.Source)
			}
		}

		if len(t.HMWQuestions) > 0 || len(t.AISuggestedSteps) > 0 {
			fmt.Fprintf(&sb, "#### AI Suggestions (%s)\n\n", suggestionLabel(d.TranscriptType))
			if len(t.HMWQuestions) > 0 {
				for j, hmw := range t.HMWQuestions {
					fmt.Fprintf(&sb, "- %s%s\n", hmw, voteSuffix(d.votes(domain.ItemKey(t.ID, domain.ItemHMW, j))))
				}
				sb.WriteString("\n")
			}
			if len(t.AISuggestedSteps) > 0 {
				for j, step := range t.AISuggestedSteps {
					fmt.Fprintf(&sb, "- %s%s\n", step, voteSuffix(d.votes(domain.ItemKey(t.ID, domain.ItemStep, j))))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("---\n\n")
	}
	return sb.String()
}

var sprintCSVHeader = []string{
	"Insight Heading", "Type", "Vote Count", "Raw Quotes", "AI Suggestions", "Source", "Date and Time of Synthesis",
}

// SprintCSV renders one row per theme. Every field is quoted.
func SprintCSV(d Data) string {
	var sb strings.Builder
	writeQuotedRow(&sb, sprintCSVHeader)

	for _, t := range d.Themes {
		quotes := make([]string, len(t.Quotes))
		var sources []string
		seen := map[string]bool{}
		for i, q := range t.Quotes {
			quotes[i] = fmt.Sprintf("\"%s\" - %s", q.Text, q.Source)
			if !seen[q.Source] {
				seen[q.Source] = true
				sources = append(sources, q.Source)
			}
		}

		var suggestions []string
		for j, hmw := range t.HMWQuestions {
			suggestions = append(suggestions, hmw+voteSuffix(d.votes(domain.ItemKey(t.ID, domain.ItemHMW, j))))
		}
		for j, step := range t.AISuggestedSteps {
			suggestions = append(suggestions, step+voteSuffix(d.votes(domain.ItemKey(t.ID, domain.ItemStep, j))))
		}

		writeQuotedRow(&sb, []string{
			t.Title,
			CategoryLabel(t.Category, d.TranscriptType),
			strconv.Itoa(d.votes(domain.ThemeKey(t.ID))),
			strings.Join(quotes, "; "),
			strings.Join(suggestions, "; "),
			strings.Join(sources, "; "),
			d.ExportDate,
		})
	}
	return sb.String()
}

func writeQuotedRow(sb *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(QuoteField(f))
	}
	sb.WriteByte('\n')
}

// QuoteField wraps a CSV field in double quotes, doubling embedded ones.
func QuoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
