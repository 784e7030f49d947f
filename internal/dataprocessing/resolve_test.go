package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apbdcli/pkg/contracts/domain"
)

func TestResolveColumn(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		keywords []string
		wantIdx  int
		wantOK   bool
	}{
		{
			name:     "direct match",
			headers:  []string{"Akun", "Anggaran", "Realisasi"},
			keywords: budgetKeywords,
			wantIdx:  1,
			wantOK:   true,
		},
		{
			name:     "case insensitive containment",
			headers:  []string{"Uraian", "NILAI ANGGARAN 2024"},
			keywords: budgetKeywords,
			wantIdx:  1,
			wantOK:   true,
		},
		{
			name: "keyword priority beats column order",
			// "pagu" is an earlier keyword than "nilai", so the later column
			// carrying "pagu" wins over the earlier "nilai" column.
			headers:  []string{"Nilai Kontrak", "Pagu"},
			keywords: []string{"pagu", "nilai"},
			wantIdx:  1,
			wantOK:   true,
		},
		{
			name:     "no match",
			headers:  []string{"Kolom A", "Kolom B"},
			keywords: budgetKeywords,
			wantIdx:  -1,
			wantOK:   false,
		},
		{
			name:     "percent symbol",
			headers:  []string{"Akun", "%"},
			keywords: percentKeywords,
			wantIdx:  1,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := ResolveColumn(tt.headers, tt.keywords)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestResolveRolesHeaderBound(t *testing.T) {
	headers := []string{"Akun", "Anggaran", "Realisasi", "Persentase", "Tahun"}
	roles, err := ResolveRoles(headers, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, roles.Account.Index)
	assert.Equal(t, domain.ColumnOriginHeader, roles.Account.Origin)
	assert.Equal(t, 1, roles.Budget.Index)
	assert.Equal(t, domain.ColumnOriginHeader, roles.Budget.Origin)
	assert.Equal(t, 2, roles.Actual.Index)
	assert.Equal(t, 3, roles.Percent.Index)
	assert.Equal(t, 4, roles.Period.Index)
}

func TestResolveRolesAccountFallback(t *testing.T) {
	headers := []string{"Butir", "Anggaran", "Realisasi"}
	roles, err := ResolveRoles(headers, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, roles.Account.Index)
	assert.Equal(t, "Butir", roles.Account.Header)
	assert.Equal(t, domain.ColumnOriginFallback, roles.Account.Origin)
	assert.False(t, roles.Percent.Bound())
	assert.False(t, roles.Period.Bound())
}

func TestResolveRolesNumericSniff(t *testing.T) {
	headers := []string{"Uraian", "Kolom A", "Kolom B"}
	rows := [][]string{
		{"Pendapatan Daerah", "1.000.000", "900.000"},
		{"Belanja Pegawai", "500.000", "450.000"},
		{"Belanja Modal", "(250.000)", "200.000"},
	}

	roles, err := ResolveRoles(headers, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, roles.Budget.Index)
	assert.Equal(t, domain.ColumnOriginFallback, roles.Budget.Origin)
	assert.Equal(t, 2, roles.Actual.Index)
	assert.Equal(t, domain.ColumnOriginFallback, roles.Actual.Origin)
}

func TestResolveRolesSingleNumericColumn(t *testing.T) {
	headers := []string{"Uraian", "Jumlah Dana"}
	rows := [][]string{
		{"Pendapatan", "1.000"},
		{"Belanja", "2.000"},
	}

	roles, err := ResolveRoles(headers, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, roles.Budget.Index)
	assert.False(t, roles.Actual.Bound())
}

func TestResolveRolesMissingAmounts(t *testing.T) {
	headers := []string{"Uraian", "Catatan"}
	rows := [][]string{
		{"Pendapatan Daerah", "lihat lampiran"},
		{"Belanja Pegawai", "n/a"},
	}

	_, err := ResolveRoles(headers, rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"anggaran", "realisasi"}, mce.Roles)
}

func TestResolveRolesSniffSkipsMixedColumn(t *testing.T) {
	headers := []string{"Uraian", "Campuran", "Angka"}
	rows := [][]string{
		{"Pendapatan", "100", "1.000"},
		{"Belanja", "teks", "2.000"},
	}

	roles, err := ResolveRoles(headers, rows)
	require.NoError(t, err)

	// The mixed column fails the sniff, so the clean numeric column binds
	// budget and actual stays unbound.
	assert.Equal(t, 2, roles.Budget.Index)
	assert.False(t, roles.Actual.Bound())
}

func TestDetected(t *testing.T) {
	headers := []string{"Akun", "Anggaran", "Realisasi"}
	roles, err := ResolveRoles(headers, nil)
	require.NoError(t, err)

	detected := roles.Detected()
	require.Len(t, detected, 5)
	assert.Equal(t, "akun", detected[0].Role)
	assert.Equal(t, "anggaran", detected[1].Role)
	assert.Equal(t, "realisasi", detected[2].Role)
	assert.Equal(t, "persentase", detected[3].Role)
	assert.Equal(t, "tahun", detected[4].Role)
	assert.Equal(t, domain.ColumnOriginNone, detected[3].Origin)
}
