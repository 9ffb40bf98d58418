package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

// maxPDFQuotes caps the quotes printed under each theme.
const maxPDFQuotes = 3

// PDF renders a printable report of every theme.
func PDF(s Snapshot, transcriptType string, generated time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := s.Project.Name
	if title == "" {
		title = "Theme Analysis Report"
	}
	pdf.SetTitle(title, true)
	pdf.SetCreationDate(generated)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(title), "", "L", false)
	if s.Project.Description != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(s.Project.Description), "", "L", false)
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Generated %s | %d themes | %d transcripts | %d quotes",
		generated.Format("2006-01-02 15:04"), len(s.Themes), len(s.Transcripts), s.totalQuotes())), "", "L", false)
	pdf.Ln(4)

	for i, t := range s.Themes {
		r, g, b := hexRGB(t.Color)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(pdf.GetX(), pdf.GetY()+1, 3, 5, "F")
		pdf.SetX(pdf.GetX() + 5)

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, t.Title)), "", "L", false)

		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr(CategoryLabel(t.Category, transcriptType)), "", "L", false)

		pdf.SetTextColor(0, 0, 0)
		if t.Description != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(t.Description), "", "L", false)
		}

		shown, more := limitQuotes(t.Quotes, maxPDFQuotes)
		if len(shown) > 0 {
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "I", 10)
			for _, q := range shown {
				pdf.MultiCell(0, 5, tr(fmt.Sprintf("\"%s\" - %s", q.Text, q.Source)), "", "L", false)
			}
			if more > 0 {
				pdf.SetFont("Helvetica", "", 9)
				pdf.MultiCell(0, 5, fmt.Sprintf("... and %d more quotes", more), "", "L", false)
			}
		}

		if len(t.HMWQuestions) > 0 {
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, tr(suggestionLabel(transcriptType)), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			for _, hmw := range t.HMWQuestions {
				pdf.MultiCell(0, 5, tr("- "+hmw), "", "L", false)
			}
		}
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func limitQuotes(quotes []domain.Quote, n int) ([]domain.Quote, int) {
	if len(quotes) <= n {
		return quotes, 0
	}
	return quotes[:n], len(quotes) - n
}

// hexRGB parses "#rrggbb". Anything else is gray.
func hexRGB(color string) (int, int, int) {
	c := strings.TrimPrefix(color, "#")
	if len(c) != 6 {
		c = strings.TrimPrefix(domain.ColorGray, "#")
	}
	v, err := strconv.ParseUint(c, 16, 32)
	if err != nil {
		return hexRGB(domain.ColorGray)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
