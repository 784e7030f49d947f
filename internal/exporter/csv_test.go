package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apbdcli/internal/config"
)

func newTestWriter(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	reportsDir := filepath.Join(t.TempDir(), "reports")
	writer := NewCSVWriter(&config.Paths{ReportsDir: reportsDir})
	return writer, reportsDir
}

func TestWriteSimpleCSV(t *testing.T) {
	writer, reportsDir := newTestWriter(t)

	headers := []string{"Kategori", "Anggaran_sum", "Realisasi_sum"}
	records := [][]string{
		{"PAD", "100", "150"},
		{"TRANSFER", "400", "380"},
	}

	require.NoError(t, writer.WriteSimpleCSV("test.csv", headers, records))

	data, err := os.ReadFile(filepath.Join(reportsDir, "test.csv"))
	require.NoError(t, err)

	// UTF-8 BOM comes first so Excel detects the encoding
	require.True(t, len(data) >= 3, "file shorter than a BOM")
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	rows, err := csv.NewReader(strings.NewReader(string(data[3:]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, records[0], rows[1])
	assert.Equal(t, records[1], rows[2])
}

func TestWriteCSVAppend(t *testing.T) {
	writer, reportsDir := newTestWriter(t)

	require.NoError(t, writer.WriteSimpleCSV("append.csv", []string{"A", "B"}, [][]string{{"1", "2"}}))
	require.NoError(t, writer.AppendToCSV("append.csv", [][]string{{"3", "4"}}))

	data, err := os.ReadFile(filepath.Join(reportsDir, "append.csv"))
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data[3:]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Append must not repeat the header or re-emit the BOM
	assert.Equal(t, []string{"3", "4"}, rows[2])
	assert.Equal(t, 1, strings.Count(string(data), "A,B"))
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	writer, reportsDir := newTestWriter(t)

	records := [][]string{{"Komposisi belanja: Operasi 60.00%, Modal 40.00%"}}
	require.NoError(t, writer.WriteSimpleCSV("quoted.csv", []string{"Interpretasi"}, records))

	data, err := os.ReadFile(filepath.Join(reportsDir, "quoted.csv"))
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data[3:]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, records[0][0], rows[1][0])
}

func TestResolvePath(t *testing.T) {
	writer, reportsDir := newTestWriter(t)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"bare filename goes to reports", "out.csv", filepath.Join(reportsDir, "out.csv")},
		{"absolute path untouched", "/tmp/elsewhere/out.csv", "/tmp/elsewhere/out.csv"},
		{"explicit relative untouched", "./out.csv", "./out.csv"},
		{"parent relative untouched", "../out.csv", "../out.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, writer.resolvePath(tt.path))
		})
	}
}

func TestStreamWriter(t *testing.T) {
	writer, reportsDir := newTestWriter(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"Sumber", "Nilai"})
	require.NoError(t, err)

	require.NoError(t, stream.WriteRecord([]string{"a.xlsx", "25.00"}))
	require.NoError(t, stream.WriteRecord([]string{"b.xlsx", "N/A"}))
	require.NoError(t, stream.Close())

	data, err := os.ReadFile(filepath.Join(reportsDir, "stream.csv"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	rows, err := csv.NewReader(strings.NewReader(string(data[3:]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"b.xlsx", "N/A"}, rows[2])
}

func TestWriteCSVCreatesDirectories(t *testing.T) {
	writer, reportsDir := newTestWriter(t)

	require.NoError(t, writer.WriteSimpleCSV("nested/dir/out.csv", []string{"A"}, nil))

	_, err := os.Stat(filepath.Join(reportsDir, "nested", "dir", "out.csv"))
	assert.NoError(t, err)
}
