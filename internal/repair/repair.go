// Package repair recovers JSON from free-form model output.
package repair

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// logLimit caps how much raw and repaired text is logged on failure.
const logLimit = 500

var (
	jsonFence     = regexp.MustCompile("(?s)```json\\n(.*?)\\n```")
	plainFence    = regexp.MustCompile("(?s)```\\n(.*?)\\n```")
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
	bareKey       = regexp.MustCompile(`([{\[,]\s*)(\w+):`)
	singleQuoted  = regexp.MustCompile(`:\s*'([^']*)'`)
	blankLines    = regexp.MustCompile(`\n\s*\n`)
	smartQuotes   = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "‟", `"`)
)

// Result is the theme list a model is asked to return.
type Result struct {
	Themes []Theme `json:"themes"`
}

type Theme struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	HMWQuestions     []string `json:"hmwQuestions"`
	AISuggestedSteps []string `json:"aiSuggestedSteps"`
	Quotes           []Quote  `json:"quotes"`
}

type Quote struct {
	Text         string `json:"text"`
	Source       string `json:"source"`
	TranscriptID FlexID `json:"transcriptId"`
}

// FlexID accepts a number, a numeric string or null.
type FlexID int64

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Labels like "Interview 2" are not ids.
		*f = 0
		return nil
	}
	*f = FlexID(n)
	return nil
}

// ParseError reports text that could not be recovered.
type ParseError struct {
	Raw      string
	Repaired string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractFenced returns the body of the first ```json or ``` fenced block,
// or s unchanged when there is none.
func ExtractFenced(s string) string {
	if m := jsonFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := plainFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// ExtractObject trims prose around the outermost {...} span.
func ExtractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

func RemoveTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "$1")
}

// QuoteBareKeys quotes unquoted object keys. Text inside double-quoted
// strings is left alone.
func QuoteBareKeys(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	start, inString := 0, false
	for i := 0; i < len(s); i++ {
		switch {
		case inString && s[i] == '\\':
			i++
		case s[i] == '"' && inString:
			sb.WriteString(s[start : i+1])
			start, inString = i+1, false
		case s[i] == '"':
			sb.WriteString(bareKey.ReplaceAllString(s[start:i], `$1"$2":`))
			start, inString = i, true
		}
	}
	if start < len(s) {
		if inString {
			sb.WriteString(s[start:])
		} else {
			sb.WriteString(bareKey.ReplaceAllString(s[start:], `$1"$2":`))
		}
	}
	return sb.String()
}

func SingleToDoubleQuotes(s string) string {
	return singleQuoted.ReplaceAllString(s, `: "$1"`)
}

func NormalizeSmartQuotes(s string) string {
	return smartQuotes.Replace(s)
}

func CollapseBlankLines(s string) string {
	return blankLines.ReplaceAllString(s, "\n")
}

// Repair applies every heuristic rewrite in order.
func Repair(s string) string {
	s = ExtractObject(s)
	s = RemoveTrailingCommas(s)
	s = QuoteBareKeys(s)
	s = SingleToDoubleQuotes(s)
	s = NormalizeSmartQuotes(s)
	return CollapseBlankLines(s)
}

// Unmarshal decodes raw into v, trying the text as-is before repairing it.
func Unmarshal(raw string, v any) error {
	candidate := strings.TrimSpace(ExtractFenced(raw))
	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	repaired := Repair(candidate)
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return &ParseError{Raw: raw, Repaired: repaired, Err: err}
	}
	return nil
}

// Parse recovers a Result from raw model output.
func Parse(raw string) (Result, error) {
	var res Result
	if err := Unmarshal(raw, &res); err != nil {
		return Result{}, err
	}
	if res.Themes == nil {
		res.Themes = []Theme{}
	}
	return res, nil
}

// RepairAndParse never fails: unrecoverable text is logged and yields no themes.
func RepairAndParse(raw string, logger *slog.Logger) Result {
	res, err := Parse(raw)
	if err == nil {
		return res
	}

	attrs := []any{"error", err, "raw", truncate(raw, logLimit)}
	if pe, ok := err.(*ParseError); ok {
		attrs = append(attrs, "repaired", truncate(pe.Repaired, logLimit))
	}
	logger.Error("failed to parse model response", attrs...)
	return Result{Themes: []Theme{}}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
