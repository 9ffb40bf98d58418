package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// Document is a rendered export ready to be sent as a download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Content types of the rendered documents.
const (
	MIMEText     = "text/plain; charset=utf-8"
	MIMEMarkdown = "text/markdown; charset=utf-8"
	MIMEWord     = "application/msword"
	MIMECSV      = "text/csv; charset=utf-8"
	MIMEJSON     = "application/json"
	MIMEExcel    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEPDF      = "application/pdf"
)

// UnsupportedFormatError reports an export format that is not offered.
type UnsupportedFormatError struct {
	Format  string
	Allowed []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q, use one of: %s", e.Format, strings.Join(e.Allowed, ", "))
}

// TextFormats are accepted by RenderText.
var TextFormats = []string{"txt", "md", "doc"}

// ProjectFormats are accepted by RenderProject.
var ProjectFormats = []string{"json", "csv", "excel", "pdf"}

// DefaultExportDate formats the time the way the sprint reports print it.
func DefaultExportDate(t time.Time) string {
	return t.Format("1/2/2006, 3:04:05 PM")
}

func stamped(ext string, now time.Time) string {
	return fmt.Sprintf("sprint-insights-%d.%s", now.UnixMilli(), ext)
}

// RenderText renders a sprint report. Word output is the plain-text report
// served with a .doc name.
func RenderText(format string, d Data, now time.Time) (Document, error) {
	if d.TranscriptType == "" {
		d.TranscriptType = domain.TranscriptExpertInterviews
	}
	switch strings.ToLower(format) {
	case "txt":
		return Document{Filename: stamped("txt", now), ContentType: MIMEText, Body: []byte(Text(d))}, nil
	case "md":
		return Document{Filename: stamped("md", now), ContentType: MIMEMarkdown, Body: []byte(Markdown(d))}, nil
	case "doc":
		return Document{Filename: stamped("doc", now), ContentType: MIMEWord, Body: []byte(Text(d))}, nil
	default:
		return Document{}, &UnsupportedFormatError{Format: format, Allowed: TextFormats}
	}
}

// RenderSprintCSV renders the one-row-per-theme spreadsheet.
func RenderSprintCSV(d Data, now time.Time) Document {
	if d.TranscriptType == "" {
		d.TranscriptType = domain.TranscriptExpertInterviews
	}
	return Document{Filename: stamped("csv", now), ContentType: MIMECSV, Body: []byte(SprintCSV(d))}
}

// RenderProject renders a whole-project export.
func RenderProject(format string, s Snapshot, transcriptType string, now time.Time) (Document, error) {
	var (
		doc Document
		err error
	)
	switch strings.ToLower(format) {
	case "json":
		doc = Document{Filename: "themes.json", ContentType: MIMEJSON}
		doc.Body, err = JSON(s)
	case "csv":
		doc = Document{Filename: "themes.csv", ContentType: MIMECSV}
		doc.Body, err = QuotesCSV(s)
	case "excel", "xlsx":
		doc = Document{Filename: "themes.xlsx", ContentType: MIMEExcel}
		doc.Body, err = Excel(s, transcriptType)
	case "pdf":
		doc = Document{Filename: "themes.pdf", ContentType: MIMEPDF}
		doc.Body, err = PDF(s, transcriptType, now)
	default:
		return Document{}, &UnsupportedFormatError{Format: format, Allowed: ProjectFormats}
	}
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}
