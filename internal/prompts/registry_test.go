package prompts

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGet_FallsBackToGeneralResearch(t *testing.T) {
	r := NewRegistry(discardLogger())

	got := r.Get("no_such_template")
	assert.Equal(t, "General Research Analysis", got.Name)

	assert.Equal(t, "User Testing Analysis", r.Get(KeyTestingNotes).Name)
	assert.Equal(t, "Expert Interviews Analysis", r.Get(KeyExpertInterviews).Name)
}

func TestRender(t *testing.T) {
	tmpl := Template{
		SystemPrompt:       "system",
		UserPromptTemplate: "Goal: {{sprintGoal}} / {{sprintGoal}}\nType: {{transcriptType}}\n{{transcriptContent}}",
	}

	tests := []struct {
		name string
		vars Vars
		want string
	}{
		{
			name: "all vars",
			vars: Vars{SprintGoal: "Grow", TranscriptContent: "body", TranscriptType: "testing_notes"},
			want: "Goal: Grow / Grow\nType: testing_notes\nbody",
		},
		{
			name: "missing goal",
			vars: Vars{TranscriptContent: "body", TranscriptType: "x"},
			want: "Goal: Not specified / Not specified\nType: x\nbody",
		},
		{
			name: "blank goal",
			vars: Vars{SprintGoal: "   ", TranscriptContent: "body", TranscriptType: "x"},
			want: "Goal: Not specified / Not specified\nType: x\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, user := Render(tmpl, tt.vars)
			assert.Equal(t, "system", sys)
			assert.Equal(t, tt.want, user)
		})
	}
}

func TestRender_BuiltinsLeaveNoPlaceholders(t *testing.T) {
	r := NewRegistry(discardLogger())
	for key, tmpl := range r.All() {
		_, user := Render(tmpl, Vars{SprintGoal: "g", TranscriptContent: "c", TranscriptType: key})
		assert.NotContains(t, user, "{{", "template %s", key)
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry(discardLogger())

	require.NoError(t, r.Register("retro", Template{Name: "Retro", UserPromptTemplate: "{{transcriptContent}}"}))
	assert.True(t, r.Has("retro"))
	assert.Equal(t, "Retro", r.Get("retro").Name)

	require.NoError(t, r.Register(KeyTestingNotes, Template{Name: "Override", UserPromptTemplate: "x"}))
	assert.Equal(t, "Override", r.Get(KeyTestingNotes).Name)

	assert.Error(t, r.Register("", Template{UserPromptTemplate: "x"}))
	assert.Error(t, r.Register("empty", Template{Name: "no user prompt"}))
}

func TestAll_ReturnsSnapshot(t *testing.T) {
	r := NewRegistry(discardLogger())
	all := r.All()
	assert.Len(t, all, 3)

	delete(all, KeyExpertInterviews)
	assert.True(t, r.Has(KeyExpertInterviews))
}

func TestCustom(t *testing.T) {
	tmpl := Custom([]string{"pricing", "onboarding"}, "Return JSON.", "comprehensive")

	assert.Equal(t, "Custom Analysis", tmpl.Name)
	assert.Contains(t, tmpl.SystemPrompt, "Focus specifically on: pricing, onboarding.")
	assert.Contains(t, tmpl.SystemPrompt, depthInstructions["comprehensive"])
	assert.Contains(t, tmpl.UserPromptTemplate, "{{sprintGoal}}")
	assert.True(t, strings.HasSuffix(tmpl.UserPromptTemplate, "Return JSON."))
	assert.Equal(t, "Custom analysis focusing on: pricing, onboarding", tmpl.Description)

	unknown := Custom([]string{"x"}, "", "exhaustive")
	assert.Contains(t, unknown.SystemPrompt, depthInstructions["detailed"])
}

const yamlTemplates = `templates:
  retro:
    name: Retro Analysis
    system_prompt: You analyse retrospectives.
    user_prompt_template: "Goal: {{sprintGoal}}\n{{transcriptContent}}"
    description: Team retrospectives
`

const tomlTemplates = `[templates.kickoff]
name = "Kickoff Analysis"
system_prompt = "You analyse kickoff notes."
user_prompt_template = "{{transcriptContent}}"
description = "Sprint kickoff notes"
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "templates.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlTemplates), 0o644))
	tomlPath := filepath.Join(dir, "templates.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlTemplates), 0o644))

	r := NewRegistry(discardLogger())

	n, err := r.LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Retro Analysis", r.Get("retro").Name)
	assert.Equal(t, "You analyse retrospectives.", r.Get("retro").SystemPrompt)

	n, err = r.LoadFile(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Sprint kickoff notes", r.Get("kickoff").Description)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(discardLogger())

	_, err := r.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	jsonPath := filepath.Join(dir, "templates.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{}`), 0o644))
	_, err = r.LoadFile(jsonPath)
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("templates: [unclosed"), 0o644))
	_, err = r.LoadFile(badPath)
	assert.Error(t, err)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates: {}\n"), 0o644))

	r := NewRegistry(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var watchErr error
	go func() {
		defer wg.Done()
		watchErr = r.Watch(ctx, path)
	}()

	// Keep rewriting until the watcher is registered and picks up a change.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(yamlTemplates), 0o644)
		return r.Has("retro")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	wg.Wait()
	assert.NoError(t, watchErr)
}
