package web

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/storyimport/internal/core"
)

// Sheet names of the report workbook, in order.
const (
	sheetCreated = "Created"
	sheetSkipped = "Skipped"
	sheetFailed  = "Failed"
)

// reportWorkbook builds a workbook with one sheet per outcome.
func reportWorkbook(summary *core.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetCreated); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetSkipped, sheetFailed} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	created := make([][]any, 0, len(summary.Created))
	for _, name := range summary.Created {
		created = append(created, []any{name, summary.Titles[name], summary.Languages[name]})
	}
	skipped := make([][]any, 0, len(summary.Skipped))
	for _, row := range summary.Skipped {
		skipped = append(skipped, []any{row.Story, row.Reason})
	}
	failed := make([][]any, 0, len(summary.Failed))
	for _, row := range summary.Failed {
		failed = append(failed, []any{row.Line, row.Title, row.Error})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{sheetCreated, []string{"story_name", "title", "language"}, created},
		{sheetSkipped, []string{"story_name", "reason"}, skipped},
		{sheetFailed, []string{"line", "title", "error"}, failed},
	}
	for _, sh := range sheets {
		if err := fillSheet(f, sh.name, sh.headers, sh.rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func fillSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// writeReportXLSX streams the workbook for summary to w.
func writeReportXLSX(w io.Writer, summary *core.Summary) error {
	f, err := reportWorkbook(summary)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// writeFailedRowsCSV writes the failed rows as line,title,error.
func writeFailedRowsCSV(w io.Writer, rows []core.FailedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"line", "title", "error"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{strconv.Itoa(row.Line), row.Title, row.Error}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
