package prompts

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Built-in template keys. They match the transcript types.
const (
	KeyExpertInterviews = "expert_interviews"
	KeyTestingNotes     = "testing_notes"
	KeyGeneralResearch  = "general_research"
)

// NotSpecified replaces a missing or empty placeholder value.
const NotSpecified = "Not specified"

// Template is a named pair of prompts with {{placeholder}} slots in the user half.
type Template struct {
	Name               string `json:"name" yaml:"name" toml:"name"`
	SystemPrompt       string `json:"systemPrompt" yaml:"system_prompt" toml:"system_prompt"`
	UserPromptTemplate string `json:"userPromptTemplate" yaml:"user_prompt_template" toml:"user_prompt_template"`
	Description        string `json:"description" yaml:"description" toml:"description"`
}

// Vars are the values substituted into a template.
type Vars struct {
	SprintGoal        string
	TranscriptContent string
	TranscriptType    string
}

// Registry maps template keys to templates. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
	logger    *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{templates: builtins(), logger: logger}
}

// Get returns the template for key, falling back to general_research.
func (r *Registry) Get(key string) Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.templates[key]; ok {
		return t
	}
	return r.templates[KeyGeneralResearch]
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[key]
	return ok
}

// Register adds or replaces the template under key.
func (r *Registry) Register(key string, t Template) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("template key is required")
	}
	if strings.TrimSpace(t.UserPromptTemplate) == "" {
		return fmt.Errorf("template %q: user prompt template is required", key)
	}
	r.mu.Lock()
	r.templates[key] = t
	r.mu.Unlock()
	return nil
}

// All returns a snapshot of every registered template.
func (r *Registry) All() map[string]Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.templates)
}

// Render substitutes every occurrence of each placeholder.
func Render(t Template, v Vars) (system, user string) {
	replacer := strings.NewReplacer(
		"{{sprintGoal}}", orNotSpecified(v.SprintGoal),
		"{{transcriptContent}}", orNotSpecified(v.TranscriptContent),
		"{{transcriptType}}", orNotSpecified(v.TranscriptType),
	)
	return t.SystemPrompt, replacer.Replace(t.UserPromptTemplate)
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}

// Custom synthesizes a template for the given focus areas. Unknown depth is treated as "detailed".
func Custom(focusAreas []string, outputFormat, depth string) Template {
	instruction, ok := depthInstructions[depth]
	if !ok {
		instruction = depthInstructions["detailed"]
	}
	focus := strings.Join(focusAreas, ", ")

	return Template{
		Name: "Custom Analysis",
		SystemPrompt: fmt.Sprintf(`You are an expert researcher analyzing qualitative data. Focus specifically on: %s.

Analysis depth: %s

Extract insights and organize them appropriately based on the content type and research goals.`, focus, instruction),
		UserPromptTemplate: fmt.Sprintf(`Analyze this content with focus on: %s

Research Goal: {{sprintGoal}}
Content: {{transcriptContent}}

%s`, focus, outputFormat),
		Description: "Custom analysis focusing on: " + focus,
	}
}

type templateFile struct {
	Templates map[string]Template `yaml:"templates" toml:"templates"`
}

// LoadFile registers every template in a YAML or TOML file and returns how many were loaded.
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read templates: %w", err)
	}

	var f templateFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return 0, fmt.Errorf("parse yaml templates: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return 0, fmt.Errorf("parse toml templates: %w", err)
		}
	default:
		return 0, fmt.Errorf("unsupported template file type %q", filepath.Ext(path))
	}

	for key, t := range f.Templates {
		if err := r.Register(key, t); err != nil {
			return 0, err
		}
	}
	return len(f.Templates), nil
}
