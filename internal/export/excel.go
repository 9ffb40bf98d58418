package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	sheetOverview = "Themes Overview"
	sheetQuotes   = "Detailed Quotes"
)

// Excel renders the workbook with a theme overview sheet and a sheet of
// every quote.
func Excel(s Snapshot, transcriptType string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetQuotes); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	overview := [][]any{{"Theme Title", "Category", "Description", "Color", "Quote Count", "HMW Questions", "AI Suggested Steps", "Created"}}
	for _, t := range s.Themes {
		overview = append(overview, []any{
			t.Title,
			CategoryLabel(t.Category, transcriptType),
			t.Description,
			t.Color,
			len(t.Quotes),
			strings.Join(t.HMWQuestions, "\n"),
			strings.Join(t.AISuggestedSteps, "\n"),
			t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	idx := s.transcriptIndex()
	quotes := [][]any{{"Theme", "Quote", "Source", "Transcript", "File Type"}}
	for _, t := range s.Themes {
		for _, q := range t.Quotes {
			quotes = append(quotes, []any{t.Title, q.Text, q.Source, transcriptName(idx, q.TranscriptID), transcriptFileType(idx, q.TranscriptID)})
		}
	}

	for _, sheet := range []struct {
		name  string
		rows  [][]any
		wides string
	}{
		{sheetOverview, overview, "C"},
		{sheetQuotes, quotes, "B"},
	} {
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(sheet.name, 1, 1, bold); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
		if err := f.SetColWidth(sheet.name, "A", "A", 30); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet.name, sheet.wides, sheet.wides, 60); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
