package dataprocessing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerScanRows caps how deep into a sheet the header row may sit. Budget
// workbooks often open with a few title rows before the real header.
const headerScanRows = 10

// ErrEmptyWorkbook is returned when no sheet yields a header row and at
// least one data row.
var ErrEmptyWorkbook = errors.New("workbook contains no usable sheet")

// Sheet is the raw extraction of one worksheet: the header row plus every
// row below it, cells kept exactly as excelize returns them. No cleaning
// happens here; that is the pipeline's job.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// ReadWorkbookFile opens an Excel file from disk and extracts its budget
// sheet.
func ReadWorkbookFile(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return extractSheet(f)
}

// ReadWorkbook extracts the budget sheet from workbook bytes, which is how
// uploads arrive over HTTP.
func ReadWorkbook(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()
	return extractSheet(f)
}

// extractSheet walks the workbook's sheets in order and picks the first one
// holding a header row with a recognizable role keyword, searching the top
// rows of each sheet so title banners above the header do not get in the
// way. When no sheet matches, the first sheet with a non-blank row followed
// by data is used instead, leaving role binding to the resolver's numeric
// sniff.
func extractSheet(f *excelize.File) (*Sheet, error) {
	var fallback *Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			slog.Debug("sheet unreadable, skipping", slog.String("sheet", name), slog.String("error", err.Error()))
			continue
		}
		if sheet := shapeByKeyword(name, rows); sheet != nil {
			slog.Info("worksheet selected",
				slog.String("sheet", name),
				slog.Int("rows", len(sheet.Rows)))
			return sheet, nil
		}
		if fallback == nil {
			if sheet := shapeFirstNonBlank(name, rows); sheet != nil && len(sheet.Rows) > 0 {
				fallback = sheet
			}
		}
	}
	if fallback != nil {
		slog.Info("worksheet selected without header match",
			slog.String("sheet", fallback.Name),
			slog.Int("rows", len(fallback.Rows)))
		return fallback, nil
	}
	return nil, ErrEmptyWorkbook
}

// shapeByKeyword finds the first row within the scan window whose cells
// match a role keyword and treats it as the header. Single-cell rows never
// qualify: a title banner like "Laporan Realisasi Anggaran" contains role
// keywords but is not a header.
func shapeByKeyword(name string, rows [][]string) *Sheet {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if countNonEmpty(rows[i]) >= 2 && headerMatchesRole(rows[i]) {
			return &Sheet{Name: name, Headers: rows[i], Rows: rows[i+1:]}
		}
	}
	return nil
}

// shapeFirstNonBlank falls back to the first non-blank row as the header.
func shapeFirstNonBlank(name string, rows [][]string) *Sheet {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if blankRow(rows[i]) {
			continue
		}
		return &Sheet{Name: name, Headers: rows[i], Rows: rows[i+1:]}
	}
	return nil
}

// headerMatchesRole reports whether any header cell matches any role
// keyword list.
func headerMatchesRole(headers []string) bool {
	for _, keywords := range [][]string{
		accountKeywords, budgetKeywords, actualKeywords, percentKeywords, periodKeywords,
	} {
		if _, ok := ResolveColumn(headers, keywords); ok {
			return true
		}
	}
	return false
}

func countNonEmpty(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}
