package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/themesync/internal/anthropic"
	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/llm"
	"github.com/MikeSquared-Agency/themesync/internal/prompts"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvider struct {
	reply string
	err   error
	calls []llm.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

func newExtractor(p llm.Provider) *Extractor {
	return New(p, prompts.NewRegistry(discardLogger()), discardLogger())
}

const twoThemes = `{"themes":[
 {"title":"Social proof","description":"Users want reviews","category":"opportunities",
  "hmwQuestions":["How might we show reviews?"],
  "quotes":[{"text":"I'd love to see what others bought","source":"User 3","transcriptId":1}]},
 {"title":"Checkout friction","category":"pain_points",
  "quotes":[{"text":"The checkout is confusing","source":"User 1","transcriptId":1}]}
]}`

func TestExtract_Success(t *testing.T) {
	p := &fakeProvider{reply: twoThemes}
	ext := newExtractor(p)

	themes, err := ext.Extract(context.Background(), Request{
		Content:        "User 1: The checkout is confusing",
		TranscriptType: domain.TranscriptExpertInterviews,
		SprintGoal:     "Increase conversions",
	})
	require.NoError(t, err)
	require.Len(t, themes, 2)

	assert.Equal(t, "Social proof", themes[0].Title)
	assert.Equal(t, domain.ColorGreen, themes[0].Color)
	assert.Equal(t, []string{"How might we show reviews?"}, themes[0].HMWQuestions)
	assert.Equal(t, domain.ColorRed, themes[1].Color)
	assert.Equal(t, []string{}, themes[1].HMWQuestions)
	assert.Equal(t, int64(1), themes[1].Quotes[0].TranscriptID)

	require.Len(t, p.calls, 1)
	call := p.calls[0]
	assert.Contains(t, call.System, "Day 2 expert interview")
	assert.Contains(t, call.Prompt, "Sprint Goal: Increase conversions")
	assert.Contains(t, call.Prompt, "The checkout is confusing")
	assert.Equal(t, llm.DefaultMaxTokens, call.MaxTokens)
	assert.True(t, call.JSON)
}

func TestExtract_TemplateKeyOverridesType(t *testing.T) {
	p := &fakeProvider{reply: `{"themes":[]}`}
	ext := newExtractor(p)

	_, err := ext.Extract(context.Background(), Request{
		Content:        "notes",
		TranscriptType: domain.TranscriptExpertInterviews,
		TemplateKey:    prompts.KeyTestingNotes,
	})
	require.NoError(t, err)
	assert.Contains(t, p.calls[0].System, "Day 4 user testing")
}

func TestExtract_UnknownTypeUsesGeneralResearch(t *testing.T) {
	p := &fakeProvider{reply: `{"themes":[]}`}
	ext := newExtractor(p)

	_, err := ext.Extract(context.Background(), Request{Content: "notes", TranscriptType: "retro"})
	require.NoError(t, err)
	assert.Contains(t, p.calls[0].Prompt, "Content Type: retro")
	assert.Contains(t, p.calls[0].Prompt, "Research Goal: Not specified")
}

func TestExtract_CategoryColors(t *testing.T) {
	p := &fakeProvider{reply: `{"themes":[
		{"title":"a","category":"ideas_hmws"},
		{"title":"b","category":"miscellaneous"},
		{"title":"c","category":"generic"},
		{"title":"d","category":"surprises"},
		{"title":"e"}
	]}`}
	ext := newExtractor(p)

	themes, err := ext.Extract(context.Background(), Request{Content: "x"})
	require.NoError(t, err)

	want := []string{domain.ColorYellow, domain.ColorYellow, domain.ColorGray, domain.ColorGray, domain.ColorGray}
	require.Len(t, themes, len(want))
	for i, c := range want {
		assert.Equal(t, c, themes[i].Color, "theme %d", i)
	}
	assert.Equal(t, "surprises", themes[3].Category)
	assert.Equal(t, domain.CategoryGeneric, themes[4].Category)
}

func TestExtract_NoProvider(t *testing.T) {
	ext := newExtractor(nil)
	assert.False(t, ext.Available())

	_, err := ext.Extract(context.Background(), Request{Content: "x"})
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestExtract_ProviderError(t *testing.T) {
	ext := newExtractor(&fakeProvider{err: errors.New("rate limited")})

	_, err := ext.Extract(context.Background(), Request{Content: "x"})
	var exErr *domain.ExtractionError
	require.True(t, errors.As(err, &exErr))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestExtract_UnparseableYieldsNoThemes(t *testing.T) {
	ext := newExtractor(&fakeProvider{reply: "Sorry, I cannot help with that."})

	themes, err := ext.Extract(context.Background(), Request{Content: "x"})
	require.NoError(t, err)
	assert.Empty(t, themes)
}

func TestExtract_ViaAnthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "```json\n" + twoThemes + "\n```"},
			},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	client := anthropic.NewClient("test-key", "")
	client.SetTestTransport(server.URL)

	themes, err := newExtractor(client).Extract(context.Background(), Request{Content: "x", TranscriptType: domain.TranscriptTestingNotes})
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "Checkout friction", themes[1].Title)
}

func TestExtractWithSettings(t *testing.T) {
	p := &fakeProvider{reply: `{"themes":[{"title":"Speed","quotes":[
		{"text":"it is slow","source":""},
		{"text":"never said","source":"User 9"}
	]}]}`}
	ext := newExtractor(p)

	transcripts := []domain.Transcript{
		{ID: 7, Content: "first interview"},
		{ID: 9, Content: "honestly it is slow to load"},
	}
	settings := domain.AnalysisSettings{PainPoints: true, Emotions: true, ThemeCount: "8-10"}

	themes, err := ext.ExtractWithSettings(context.Background(), transcripts, settings)
	require.NoError(t, err)
	require.Len(t, themes, 1)

	quotes := themes[0].Quotes
	require.Len(t, quotes, 2)
	assert.Equal(t, int64(9), quotes[0].TranscriptID)
	assert.Equal(t, "Source 1", quotes[0].Source)
	assert.Equal(t, int64(7), quotes[1].TranscriptID)

	call := p.calls[0]
	assert.Contains(t, call.Prompt, "extract 8-10 key themes")
	assert.Contains(t, call.Prompt, "pain points and frustrations, emotional responses and feelings")
	assert.Contains(t, call.Prompt, "first interview"+transcriptBreak+"honestly it is slow to load")
	require.NotNil(t, call.Temperature)
	assert.Equal(t, llm.Precise, *call.Temperature)
}

func TestExtractWithSettings_NoTranscripts(t *testing.T) {
	ext := newExtractor(&fakeProvider{})

	_, err := ext.ExtractWithSettings(context.Background(), nil, domain.DefaultAnalysisSettings(1))
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
}

func TestThemeCountRange(t *testing.T) {
	assert.Equal(t, "5-7", themeCountRange("5-7"))
	assert.Equal(t, "8-10", themeCountRange("8-10"))
	assert.Equal(t, "5-7", themeCountRange("20"))
	assert.Equal(t, "5-7", themeCountRange(""))
}

func TestRefine(t *testing.T) {
	quotes := []domain.Quote{{Text: "too many steps", Source: "User 2"}}

	t.Run("success", func(t *testing.T) {
		p := &fakeProvider{reply: `{"title":"Checkout length","description":"Users abandon long flows."}`}
		got := newExtractor(p).Refine(context.Background(), "Checkout", quotes, "mobile")
		assert.Equal(t, Refinement{Title: "Checkout length", Description: "Users abandon long flows."}, got)
		assert.True(t, strings.Contains(p.calls[0].Prompt, `- "too many steps" (User 2)`))
	})

	t.Run("provider error", func(t *testing.T) {
		got := newExtractor(&fakeProvider{err: errors.New("down")}).Refine(context.Background(), "Checkout", quotes, "")
		assert.Equal(t, Refinement{Title: "Checkout"}, got)
	})

	t.Run("garbage", func(t *testing.T) {
		got := newExtractor(&fakeProvider{reply: "no"}).Refine(context.Background(), "Checkout", quotes, "")
		assert.Equal(t, Refinement{Title: "Checkout"}, got)
	})

	t.Run("no provider", func(t *testing.T) {
		got := newExtractor(nil).Refine(context.Background(), "Checkout", quotes, "")
		assert.Equal(t, Refinement{Title: "Checkout"}, got)
	})
}
