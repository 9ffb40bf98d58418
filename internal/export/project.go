package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// Snapshot is everything the project-level exports read.
type Snapshot struct {
	Project     domain.Project
	Themes      []domain.Theme
	Transcripts []domain.Transcript
}

func (s Snapshot) totalQuotes() int {
	n := 0
	for _, t := range s.Themes {
		n += len(t.Quotes)
	}
	return n
}

// transcriptIndex resolves quote transcript ids. Dangling ids are missing
// from the map.
func (s Snapshot) transcriptIndex() map[int64]domain.Transcript {
	idx := make(map[int64]domain.Transcript, len(s.Transcripts))
	for _, t := range s.Transcripts {
		idx[t.ID] = t
	}
	return idx
}

type jsonExport struct {
	Project struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		SprintGoal  string    `json:"sprintGoal,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	} `json:"project"`
	Summary struct {
		TotalThemes      int `json:"totalThemes"`
		TotalTranscripts int `json:"totalTranscripts"`
		TotalQuotes      int `json:"totalQuotes"`
	} `json:"summary"`
	Themes      []jsonTheme      `json:"themes"`
	Transcripts []jsonTranscript `json:"transcripts"`
}

type jsonTheme struct {
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	Color            string         `json:"color"`
	Quotes           []domain.Quote `json:"quotes"`
	HMWQuestions     []string       `json:"hmwQuestions"`
	AISuggestedSteps []string       `json:"aiSuggestedSteps"`
	CreatedAt        time.Time      `json:"createdAt"`
}

type jsonTranscript struct {
	Filename   string    `json:"filename"`
	FileType   string    `json:"fileType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// JSON renders the project, a summary and every theme, indented.
func JSON(s Snapshot) ([]byte, error) {
	var out jsonExport
	out.Project.Name = s.Project.Name
	out.Project.Description = s.Project.Description
	out.Project.SprintGoal = s.Project.SprintGoal
	out.Project.CreatedAt = s.Project.CreatedAt
	out.Summary.TotalThemes = len(s.Themes)
	out.Summary.TotalTranscripts = len(s.Transcripts)
	out.Summary.TotalQuotes = s.totalQuotes()

	out.Themes = make([]jsonTheme, 0, len(s.Themes))
	for _, t := range s.Themes {
		out.Themes = append(out.Themes, jsonTheme{
			Title:            t.Title,
			Description:      t.Description,
			Category:         t.Category,
			Color:            t.Color,
			Quotes:           nonNil(t.Quotes),
			HMWQuestions:     nonNil(t.HMWQuestions),
			AISuggestedSteps: nonNil(t.AISuggestedSteps),
			CreatedAt:        t.CreatedAt,
		})
	}
	out.Transcripts = make([]jsonTranscript, 0, len(s.Transcripts))
	for _, t := range s.Transcripts {
		out.Transcripts = append(out.Transcripts, jsonTranscript{Filename: t.Filename, FileType: t.FileType, UploadedAt: t.UploadedAt})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json export: %w", err)
	}
	return b, nil
}

// QuotesCSV renders one row per quote with the theme and source transcript.
func QuotesCSV(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Theme", "Description", "Quote", "Source", "Transcript"}); err != nil {
		return nil, err
	}

	idx := s.transcriptIndex()
	for _, t := range s.Themes {
		for _, q := range t.Quotes {
			if err := w.Write([]string{t.Title, t.Description, q.Text, q.Source, transcriptName(idx, q.TranscriptID)}); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write quotes csv: %w", err)
	}
	return buf.Bytes(), nil
}

func transcriptName(idx map[int64]domain.Transcript, id int64) string {
	if t, ok := idx[id]; ok {
		return t.Filename
	}
	return "Unknown"
}

func transcriptFileType(idx map[int64]domain.Transcript, id int64) string {
	if t, ok := idx[id]; ok {
		return t.FileType
	}
	return "Unknown"
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
