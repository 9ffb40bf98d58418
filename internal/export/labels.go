package export

import "github.com/MikeSquared-Agency/themesync/internal/domain"

var categoryLabels = map[string]map[string]string{
	domain.TranscriptExpertInterviews: {
		domain.CategoryOpportunities: "Opportunities",
		domain.CategoryPainPoints:    "Pain Points",
		domain.CategoryIdeasHMWs:     "Ideas",
		domain.CategoryMiscellaneous: "Misc/Observations",
		domain.CategoryGeneric:       "Generic",
	},
	domain.TranscriptTestingNotes: {
		domain.CategoryOpportunities: "What Worked",
		domain.CategoryPainPoints:    "What Didn't Work",
		domain.CategoryIdeasHMWs:     "Ideas/Next Steps",
		domain.CategoryMiscellaneous: "Ideas/Next Steps",
		domain.CategoryGeneric:       "Generic",
	},
}

// CategoryLabel returns the display label of a category for a transcript
// type. Transcript types other than testing notes use the interview labels.
func CategoryLabel(category, transcriptType string) string {
	labels, ok := categoryLabels[transcriptType]
	if !ok {
		labels = categoryLabels[domain.TranscriptExpertInterviews]
	}
	if l, ok := labels[category]; ok {
		return l
	}
	return "Other"
}

func transcriptTypeLabel(transcriptType string) string {
	if transcriptType == domain.TranscriptTestingNotes {
		return "Testing Notes"
	}
	return "Expert Interviews"
}

func suggestionLabel(transcriptType string) string {
	if transcriptType == domain.TranscriptTestingNotes {
		return "Next Steps"
	}
	return "HMW Questions"
}
