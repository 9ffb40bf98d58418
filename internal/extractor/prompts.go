package extractor

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// transcriptBreak separates transcripts combined into one prompt.
const transcriptBreak = "\n\n---TRANSCRIPT BREAK---\n\n"

const settingsSystemPrompt = `You are an expert user researcher specializing in qualitative data analysis. You extract meaningful themes from user interview transcripts and identify supporting quotes.`

const settingsUserPrompt = `Analyze the following user interview transcripts and extract %s key themes. Focus on: %s.

For each theme, provide:
1. A clear, descriptive title (2-5 words)
2. A brief description (1-2 sentences)
3. A category: opportunities, pain_points, ideas_hmws or generic
4. 2-4 supporting quotes from the transcripts
5. The source identifier for each quote (e.g., "Interview #1", "Transcript A")

Return the results in this JSON format:
{
  "themes": [
    {
      "title": "Theme Title",
      "description": "Brief description of the theme",
      "category": "opportunities|pain_points|ideas_hmws|generic",
      "quotes": [
        {
          "text": "Exact quote from transcript",
          "source": "Source identifier"
        }
      ]
    }
  ]
}

Interview Transcripts:
%s

Important guidelines:
- Extract quotes verbatim from the transcripts
- Ensure themes are distinct and non-overlapping
- Focus on recurring patterns across multiple interviews
- Prioritize actionable insights for product teams
- Use clear, jargon-free language for theme titles`

const refineSystemPrompt = `You are a UX research expert helping to refine theme analysis.`

const refineUserPrompt = `Based on the following quotes and context, refine this theme:

Current Theme: "%s"

Supporting Quotes:
%s

Context: %s

Provide a refined theme title and description in JSON format:
{
  "title": "Refined theme title (2-5 words)",
  "description": "Clear description of what this theme represents (1-2 sentences)"
}`

// focusAreas lists what the settings ask the model to look for.
func focusAreas(s domain.AnalysisSettings) []string {
	var areas []string
	if s.PainPoints {
		areas = append(areas, "pain points and frustrations")
	}
	if s.FeatureRequests {
		areas = append(areas, "feature requests and suggestions")
	}
	if s.UserBehaviors {
		areas = append(areas, "user behaviors and usage patterns")
	}
	if s.Emotions {
		areas = append(areas, "emotional responses and feelings")
	}
	if len(areas) == 0 {
		areas = append(areas, "the most important recurring themes")
	}
	return areas
}

// themeCountRange accepts only the two supported ranges.
func themeCountRange(s string) string {
	if s == "8-10" {
		return s
	}
	return "5-7"
}

func buildSettingsPrompt(combined string, s domain.AnalysisSettings) string {
	return fmt.Sprintf(settingsUserPrompt, themeCountRange(s.ThemeCount), strings.Join(focusAreas(s), ", "), combined)
}

func buildRefinePrompt(title string, quotes []domain.Quote, background string) string {
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, fmt.Sprintf("- \"%s\" (%s)", q.Text, q.Source))
	}
	return fmt.Sprintf(refineUserPrompt, title, strings.Join(lines, "\n"), background)
}
