// Package ingest validates uploaded files and pasted text and turns them
// into transcripts.
package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// MaxFileSize is the per-file upload limit.
const MaxFileSize = 10 << 20

// AllowedExtensions lists the file types accepted for upload.
var AllowedExtensions = []string{"txt", "md", "pdf", "doc", "docx"}

var allowedContentTypes = []string{
	"text/plain",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var (
	excessBreaks = regexp.MustCompile(`\n{3,}`)
	oddSymbols   = regexp.MustCompile(`[^\w\s.,?!:;\-'"()]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Extension returns the lower-cased extension without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// AcceptsContentType reports whether a part with this content type may be
// uploaded. Markdown files are accepted whatever their declared type, since
// browsers rarely agree on one.
func AcceptsContentType(filename, contentType string) bool {
	if strings.HasSuffix(filename, ".md") {
		return true
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	return slices.Contains(allowedContentTypes, strings.TrimSpace(strings.ToLower(mediaType)))
}

// Validate checks one uploaded file before it is stored.
func Validate(filename, contentType string, data []byte) error {
	if filename == "" {
		return &domain.ValidationError{Message: "Filename is required"}
	}
	if !AcceptsContentType(filename, contentType) {
		return &domain.ValidationError{
			Message: fmt.Sprintf("Unsupported file type for %s", filename),
			Fields:  map[string]string{"contentType": contentType},
		}
	}
	if len(data) == 0 {
		return &domain.ValidationError{Message: "File content is required"}
	}
	if !slices.Contains(AllowedExtensions, Extension(filename)) {
		return &domain.ValidationError{
			Message: "Unsupported file type. Allowed types: " + strings.Join(AllowedExtensions, ", "),
		}
	}
	if len(data) > MaxFileSize {
		return &domain.ValidationError{Message: "File size exceeds 10MB limit"}
	}
	return nil
}

// Normalize tidies line endings and spacing of uploaded text.
func Normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = excessBreaks.ReplaceAllString(content, "\n\n")
	content = strings.ReplaceAll(content, "\t", " ")
	return strings.TrimSpace(content)
}

// FormatForAI flattens pasted text to a single line of plain words and
// common punctuation.
func FormatForAI(content string) string {
	content = oddSymbols.ReplaceAllString(content, " ")
	content = whitespace.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// FromUpload validates a file and builds the transcript to store. PDF and
// Word files are read as text.
func FromUpload(projectID int64, filename, contentType string, data []byte) (domain.Transcript, error) {
	if err := Validate(filename, contentType, data); err != nil {
		return domain.Transcript{}, err
	}
	return domain.Transcript{
		ProjectID: projectID,
		Filename:  filename,
		Content:   Normalize(strings.ToValidUTF8(string(data), "�")),
		FileType:  Extension(filename),
	}, nil
}

// FromText builds the transcript for pasted text.
func FromText(projectID int64, content string, now time.Time) (domain.Transcript, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Transcript{}, domain.Invalid("content", "is required")
	}
	formatted := FormatForAI(content)
	if formatted == "" {
		return domain.Transcript{}, domain.Invalid("content", "has no readable text")
	}
	return domain.Transcript{
		ProjectID: projectID,
		Filename:  "Pasted Text " + now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Content:   formatted,
		FileType:  "txt",
	}, nil
}
