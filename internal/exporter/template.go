package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	// TemplateFileName is the download name for the example workbook.
	TemplateFileName = "template_apbd.xlsx"
	// TemplateContentType is the MIME type for xlsx downloads.
	TemplateContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	templateSheetName = "APBD"
)

// templateRows returns the header row plus the two sample rows of the
// example workbook. Values are written as text cells, matching how the
// upload pipeline reads everything back as strings before cleaning.
// Both sample rows carry the same period on purpose: a freshly
// downloaded template analyzes without growth ratios.
func templateRows() [][]interface{} {
	return [][]interface{}{
		{"Akun", "Anggaran", "Realisasi", "Persentase", "Tahun"},
		{"Pendapatan Daerah", "3557491170098", "3758774961806", "105.66", "2024"},
		{"PAD", "322846709929", "561854145372", "174.03", "2024"},
	}
}

// BuildTemplate builds the downloadable example workbook: a single APBD
// sheet laid out as Akun | Anggaran | Realisasi | Persentase | Tahun.
// The caller owns the returned file and must Close it.
func BuildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name template sheet: %w", err)
	}

	for i, row := range templateRows() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to address template row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(templateSheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write template row %d: %w", i+1, err)
		}
	}

	return f, nil
}

// TemplateBytes renders the example workbook to memory for HTTP downloads.
func TemplateBytes() ([]byte, error) {
	f, err := BuildTemplate()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render template workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTemplate saves the example workbook to the given path, creating
// parent directories as needed.
func WriteTemplate(path string) error {
	f, err := BuildTemplate()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save template workbook: %w", err)
	}
	return nil
}
