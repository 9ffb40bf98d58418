// Package analysis runs the extract-and-replace flow that turns transcript
// text into a fresh set of stored themes.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/events"
	"github.com/MikeSquared-Agency/themesync/internal/extractor"
	"github.com/MikeSquared-Agency/themesync/internal/store"
)

// Event sources.
const (
	SourceAnalyze       = "analyze"
	SourceExtractThemes = "extract-themes"
)

// Notifier announces finished analyses, typically to a chat channel.
type Notifier interface {
	PostAnalysisSummary(ctx context.Context, project domain.Project, themes []domain.Theme) (string, error)
	PostThread(ctx context.Context, threadTS, text string) error
}

// Pipeline orchestrates extraction, replacement of the project's themes and
// announcements.
type Pipeline struct {
	store     store.Store
	extractor *extractor.Extractor
	events    events.Publisher
	notifier  Notifier
	provider  string
	logger    *slog.Logger
}

func New(s store.Store, ext *extractor.Extractor, pub events.Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{store: s, extractor: ext, events: pub, logger: logger}
}

// SetNotifier registers where summaries are posted. nil disables it.
func (p *Pipeline) SetNotifier(n Notifier) { p.notifier = n }

// SetProviderName records the provider name reported in events.
func (p *Pipeline) SetProviderName(name string) { p.provider = name }

// Available reports whether a model provider is configured.
func (p *Pipeline) Available() bool { return p.extractor.Available() }

type AnalyzeRequest struct {
	ProjectID         int64
	TranscriptContent string
	TranscriptType    string
	SprintGoal        string
	TemplateKey       string
}

type Result struct {
	Themes  []domain.Theme
	Cleared int
}

// Analyze extracts themes from pasted content and replaces the project's
// themes with them. The project's sprint goal is used when none is given.
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (Result, error) {
	if strings.TrimSpace(req.TranscriptContent) == "" {
		return Result{}, &domain.ValidationError{
			Message: "Transcript content is required",
			Fields:  map[string]string{"transcriptContent": "is required"},
		}
	}
	if !p.extractor.Available() {
		return Result{}, &domain.ConfigurationError{Reason: "no model API key configured"}
	}
	if req.TranscriptType == "" {
		req.TranscriptType = domain.TranscriptExpertInterviews
	}

	project, err := p.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		return Result{}, err
	}
	if req.SprintGoal == "" {
		req.SprintGoal = project.SprintGoal
	}

	extracted, err := p.extractor.Extract(ctx, extractor.Request{
		Content:        req.TranscriptContent,
		TranscriptType: req.TranscriptType,
		SprintGoal:     req.SprintGoal,
		TemplateKey:    req.TemplateKey,
	})
	if err != nil {
		return Result{}, err
	}

	res, err := p.replace(ctx, req.ProjectID, extracted)
	if err != nil {
		return Result{}, err
	}
	p.finish(ctx, project, SourceAnalyze, res)
	return res, nil
}

// ExtractThemes analyses every stored transcript of the project under the
// given settings, replaces the project's themes and saves the settings.
func (p *Pipeline) ExtractThemes(ctx context.Context, projectID int64, settings domain.AnalysisSettings) (Result, error) {
	if !p.extractor.Available() {
		return Result{}, &domain.ConfigurationError{Reason: "no model API key configured"}
	}
	settings.ProjectID = projectID

	project, err := p.store.GetProject(ctx, projectID)
	if err != nil {
		return Result{}, err
	}
	transcripts, err := p.store.ListTranscripts(ctx, projectID)
	if err != nil {
		return Result{}, err
	}

	extracted, err := p.extractor.ExtractWithSettings(ctx, transcripts, settings)
	if err != nil {
		return Result{}, err
	}

	res, err := p.replace(ctx, projectID, extracted)
	if err != nil {
		return Result{}, err
	}
	if _, err := p.store.SaveAnalysisSettings(ctx, settings); err != nil {
		return Result{}, fmt.Errorf("save analysis settings: %w", err)
	}
	p.finish(ctx, project, SourceExtractThemes, res)
	return res, nil
}

// replace clears the project's themes and stores the new ones with
// position equal to their index. The two steps are not atomic.
func (p *Pipeline) replace(ctx context.Context, projectID int64, extracted []extractor.ExtractedTheme) (Result, error) {
	cleared, err := p.store.ClearThemes(ctx, projectID)
	if err != nil {
		return Result{}, fmt.Errorf("clear themes: %w", err)
	}

	stored := make([]domain.Theme, 0, len(extracted))
	for i, et := range extracted {
		t, err := p.store.CreateTheme(ctx, et.Theme(projectID, i))
		if err != nil {
			return Result{}, fmt.Errorf("store theme %d: %w", i, err)
		}
		stored = append(stored, t)
	}
	return Result{Themes: stored, Cleared: cleared}, nil
}

func (p *Pipeline) finish(ctx context.Context, project domain.Project, source string, res Result) {
	p.logger.Info("analysis stored",
		"project_id", project.ID,
		"source", source,
		"themes", len(res.Themes),
		"cleared", res.Cleared,
	)
	events.Emit(p.events, p.logger, events.SubjectAnalysisCompleted, events.AnalysisCompleted{
		ProjectID: project.ID,
		Source:    source,
		Provider:  p.provider,
		Themes:    len(res.Themes),
		Cleared:   res.Cleared,
	})
	p.notify(ctx, project, res.Themes)
}

func (p *Pipeline) notify(ctx context.Context, project domain.Project, themes []domain.Theme) {
	if p.notifier == nil {
		return
	}
	ts, err := p.notifier.PostAnalysisSummary(ctx, project, themes)
	if err != nil {
		p.logger.Error("slack post failed", "project_id", project.ID, "error", err)
		return
	}
	if thread := hmwDigest(themes); thread != "" {
		if err := p.notifier.PostThread(ctx, ts, thread); err != nil {
			p.logger.Warn("slack thread post failed", "ts", ts, "error", err)
		}
	}
}

// hmwDigest lists the first HMW question of each theme that has one.
func hmwDigest(themes []domain.Theme) string {
	var sb strings.Builder
	for _, t := range themes {
		if len(t.HMWQuestions) == 0 {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString("*How might we...*\n")
		}
		fmt.Fprintf(&sb, "• %s _(%s)_\n", t.HMWQuestions[0], t.Title)
	}
	return sb.String()
}

// Refine asks the model for a sharper title and description and stores
// them. The description is kept when the model offers none.
func (p *Pipeline) Refine(ctx context.Context, themeID int64, background string) (domain.Theme, error) {
	t, err := p.store.GetTheme(ctx, themeID)
	if err != nil {
		return domain.Theme{}, err
	}
	if !p.extractor.Available() {
		return domain.Theme{}, &domain.ConfigurationError{Reason: "no model API key configured"}
	}

	ref := p.extractor.Refine(ctx, t.Title, t.Quotes, background)
	updated, err := p.store.UpdateTheme(ctx, themeID, func(t *domain.Theme) error {
		t.Title = ref.Title
		if strings.TrimSpace(ref.Description) != "" {
			t.Description = ref.Description
		}
		return nil
	})
	if err != nil {
		return domain.Theme{}, err
	}
	events.Emit(p.events, p.logger, events.SubjectThemeUpdated, events.ThemeChanged{ThemeID: themeID, ProjectID: updated.ProjectID})
	return updated, nil
}
