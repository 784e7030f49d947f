package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apbdcli/internal/config"
	"apbdcli/pkg/contracts/domain"
)

func sampleAggregateRows() []domain.AggregateRow {
	return []domain.AggregateRow{
		{Category: domain.CategoryPAD, Budget: 322846709929, Actual: 561854145372},
		{Category: domain.CategoryTransfer, Budget: 3234644460169, Actual: 3196920816434},
		{Category: domain.CategoryBelanjaOperasi, Budget: 2500000000000, Actual: 2400000000000.5},
	}
}

func TestAggregateExport(t *testing.T) {
	reportsDir := filepath.Join(t.TempDir(), "reports")
	exp := NewAggregateExporter(&config.Paths{ReportsDir: reportsDir})

	require.NoError(t, exp.Export(sampleAggregateRows(), ""))

	data, err := os.ReadFile(filepath.Join(reportsDir, AggregateFileName))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	rows, err := csv.NewReader(strings.NewReader(string(data[3:]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Kategori", "Anggaran_sum", "Realisasi_sum"}, rows[0])
	assert.Equal(t, []string{"PAD", "322846709929", "561854145372"}, rows[1])
	assert.Equal(t, []string{"TRANSFER", "3234644460169", "3196920816434"}, rows[2])
	// Fractional rupiah survive; whole amounts carry no trailing zeros
	assert.Equal(t, []string{"BELANJA_OPERASI", "2500000000000", "2400000000000.5"}, rows[3])
}

func TestRenderAggregate(t *testing.T) {
	payload, err := RenderAggregate(sampleAggregateRows())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(payload, []byte{0xEF, 0xBB, 0xBF}))

	rows, err := csv.NewReader(bytes.NewReader(payload[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Kategori", "Anggaran_sum", "Realisasi_sum"}, rows[0])
	assert.Equal(t, []string{"PAD", "322846709929", "561854145372"}, rows[1])
}

func TestRenderAggregateSep(t *testing.T) {
	payload, err := RenderAggregateSep(sampleAggregateRows(), ';')
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(payload[3:]))
	reader.Comma = ';'
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Kategori", "Anggaran_sum", "Realisasi_sum"}, rows[0])
	assert.Equal(t, []string{"PAD", "322846709929", "561854145372"}, rows[1])
}

func TestRenderAggregateEmpty(t *testing.T) {
	payload, err := RenderAggregate(nil)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(payload[3:])).ReadAll()
	require.NoError(t, err)
	// Header-only download is still a valid CSV
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Kategori", "Anggaran_sum", "Realisasi_sum"}, rows[0])
}
