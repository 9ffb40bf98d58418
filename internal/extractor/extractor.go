package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/llm"
	"github.com/MikeSquared-Agency/themesync/internal/prompts"
	"github.com/MikeSquared-Agency/themesync/internal/repair"
)

type Extractor struct {
	llm       llm.Provider
	templates *prompts.Registry
	logger    *slog.Logger
}

// New returns an extractor. provider may be nil, in which case every call
// fails with a ConfigurationError.
func New(provider llm.Provider, templates *prompts.Registry, logger *slog.Logger) *Extractor {
	return &Extractor{llm: provider, templates: templates, logger: logger}
}

// Available reports whether a model provider is configured.
func (e *Extractor) Available() bool {
	return e.llm != nil
}

func (e *Extractor) requireProvider() error {
	if e.llm == nil {
		return &domain.ConfigurationError{Reason: "no model API key configured"}
	}
	return nil
}

// Extract renders the selected template over the content and returns the themes the model found.
func (e *Extractor) Extract(ctx context.Context, req Request) ([]ExtractedTheme, error) {
	if err := e.requireProvider(); err != nil {
		return nil, err
	}

	key := req.TemplateKey
	if key == "" {
		key = req.TranscriptType
	}
	tmpl := e.templates.Get(key)
	system, user := prompts.Render(tmpl, prompts.Vars{
		SprintGoal:        req.SprintGoal,
		TranscriptContent: req.Content,
		TranscriptType:    req.TranscriptType,
	})

	e.logger.Info("extracting insights",
		"provider", e.llm.Name(),
		"template", key,
		"transcript_type", req.TranscriptType,
		"content_len", len(req.Content),
	)

	raw, err := e.llm.Generate(ctx, llm.Request{
		System:      system,
		Prompt:      user,
		MaxTokens:   llm.DefaultMaxTokens,
		Temperature: llm.Temp(llm.Creative),
		JSON:        mentionsJSON(system, user),
	})
	if err != nil {
		return nil, &domain.ExtractionError{Err: err}
	}

	themes := e.convert(repair.RepairAndParse(raw, e.logger), nil)

	e.logger.Info("extraction complete", "template", key, "themes", len(themes))
	return themes, nil
}

// ExtractWithSettings analyses every transcript together, steered by the project's analysis settings.
func (e *Extractor) ExtractWithSettings(ctx context.Context, transcripts []domain.Transcript, settings domain.AnalysisSettings) ([]ExtractedTheme, error) {
	if err := e.requireProvider(); err != nil {
		return nil, err
	}
	if len(transcripts) == 0 {
		return nil, &domain.ValidationError{Message: "No transcripts found. Please upload files or add text first."}
	}

	contents := make([]string, len(transcripts))
	for i, t := range transcripts {
		contents[i] = t.Content
	}

	e.logger.Info("extracting themes with settings",
		"provider", e.llm.Name(),
		"transcripts", len(transcripts),
		"theme_count", themeCountRange(settings.ThemeCount),
	)

	raw, err := e.llm.Generate(ctx, llm.Request{
		System:      settingsSystemPrompt,
		Prompt:      buildSettingsPrompt(strings.Join(contents, transcriptBreak), settings),
		MaxTokens:   llm.DefaultMaxTokens,
		Temperature: llm.Temp(llm.Precise),
		JSON:        true,
	})
	if err != nil {
		return nil, &domain.ExtractionError{Err: err}
	}

	themes := e.convert(repair.RepairAndParse(raw, e.logger), transcripts)

	e.logger.Info("extraction complete", "themes", len(themes))
	return themes, nil
}

// Refine asks the model for a sharper title and description. Any failure
// yields the original title and an empty description.
func (e *Extractor) Refine(ctx context.Context, title string, quotes []domain.Quote, background string) Refinement {
	fallback := Refinement{Title: title}
	if e.llm == nil {
		return fallback
	}

	raw, err := e.llm.Generate(ctx, llm.Request{
		System:      refineSystemPrompt,
		Prompt:      buildRefinePrompt(title, quotes, background),
		MaxTokens:   1000,
		Temperature: llm.Temp(llm.Precise),
		JSON:        true,
	})
	if err != nil {
		e.logger.Warn("theme refinement failed", "title", title, "error", err)
		return fallback
	}

	var out Refinement
	if err := repair.Unmarshal(raw, &out); err != nil {
		e.logger.Warn("theme refinement unparseable", "title", title, "error", err)
		return fallback
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = title
	}
	return out
}

// convert maps parsed themes to extracted themes. When transcripts are given,
// each quote is attributed to the transcript that contains it.
func (e *Extractor) convert(res repair.Result, transcripts []domain.Transcript) []ExtractedTheme {
	themes := make([]ExtractedTheme, 0, len(res.Themes))
	for i, t := range res.Themes {
		category := strings.TrimSpace(t.Category)
		if category == "" {
			category = domain.CategoryGeneric
		}
		title := strings.TrimSpace(t.Title)
		if title == "" {
			title = fmt.Sprintf("Theme %d", i+1)
		}

		quotes := make([]domain.Quote, 0, len(t.Quotes))
		for j, q := range t.Quotes {
			source := q.Source
			if source == "" {
				source = fmt.Sprintf("Source %d", j+1)
			}
			id := int64(q.TranscriptID)
			if len(transcripts) > 0 {
				id = findTranscriptID(q.Text, transcripts)
			}
			quotes = append(quotes, domain.Quote{Text: q.Text, Source: source, TranscriptID: id})
		}

		themes = append(themes, ExtractedTheme{
			Title:            title,
			Description:      t.Description,
			Category:         category,
			Color:            domain.CategoryColor(category),
			Quotes:           quotes,
			HMWQuestions:     nonNil(t.HMWQuestions),
			AISuggestedSteps: nonNil(t.AISuggestedSteps),
		})
	}
	return themes
}

// findTranscriptID returns the id of the first transcript containing the
// quote, or the first transcript's id when none does.
func findTranscriptID(quote string, transcripts []domain.Transcript) int64 {
	if quote != "" {
		for _, t := range transcripts {
			if strings.Contains(t.Content, quote) {
				return t.ID
			}
		}
	}
	return transcripts[0].ID
}

// OpenAI rejects JSON mode unless the prompt itself asks for JSON.
func mentionsJSON(parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(strings.ToLower(p), "json") {
			return true
		}
	}
	return false
}
