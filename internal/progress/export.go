package progress

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	progressSheet = "Progress"
	notesSheet    = "Saved Notes"
	// OutOf is the maximum quiz score.
	OutOf = 5
)

// ExportXLSX writes a workbook with a Progress sheet (one row per quiz) and a
// Saved Notes sheet (one row per note, sorted by title).
func ExportXLSX(w io.Writer, log []Entry, notes map[string]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(notesSheet); err != nil {
		return fmt.Errorf("create notes sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	rows := [][]any{{"Topic", "Score", "Out Of"}}
	for _, e := range log {
		rows = append(rows, []any{e.Topic, e.Score, OutOf})
	}
	if err := writeRows(f, progressSheet, rows, header); err != nil {
		return err
	}

	titles := make([]string, 0, len(notes))
	for t := range notes {
		titles = append(titles, t)
	}
	slices.SortFunc(titles, strings.Compare)

	rows = [][]any{{"Title", "Summary"}}
	for _, t := range titles {
		rows = append(rows, []any{t, notes[t]})
	}
	if err := writeRows(f, notesSheet, rows, header); err != nil {
		return err
	}

	if err := f.SetColWidth(progressSheet, "A", "A", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(notesSheet, "A", "A", 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(notesSheet, "B", "B", 100); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}
