package dataprocessing

import (
	"errors"
	"fmt"
	"strings"

	"apbdcli/pkg/contracts/domain"
)

// Role keyword lists, in priority order. The resolver walks keywords in the
// outer loop, so the first keyword that matches any header wins even when a
// later keyword would match an earlier column. "pagu" therefore beats the
// generic "nilai", and "realisasi" beats its longer variants.
var (
	accountKeywords = []string{"akun", "rekening", "uraian", "keterangan", "nama akun"}
	budgetKeywords  = []string{"anggaran", "pagu", "nilai anggaran", "nilai", "budget"}
	actualKeywords  = []string{"realisasi", "realisasi (rp)", "realisasi anggaran"}
	percentKeywords = []string{"persentase", "persen", "%"}
	periodKeywords  = []string{"tahun", "periode"}
)

// numericSniffRows caps how many non-empty cells per column the fallback
// resolver samples when deciding whether a column holds amounts.
const numericSniffRows = 10

// ErrMissingColumn is the sentinel for an upload whose amount columns cannot
// be resolved at all. Match with errors.Is; the concrete MissingColumnError
// carries the unresolved role names.
var ErrMissingColumn = errors.New("missing required column")

// MissingColumnError reports which semantic roles stayed unbound after both
// keyword matching and the numeric sniff.
type MissingColumnError struct {
	Roles []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column: %s", strings.Join(e.Roles, ", "))
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// ColumnBinding ties one semantic role to a concrete column.
type ColumnBinding struct {
	Index  int
	Header string
	Origin domain.ColumnOrigin
}

// Bound reports whether the role resolved to a column.
func (b ColumnBinding) Bound() bool { return b.Origin != domain.ColumnOriginNone }

// ColumnRoles holds one binding per semantic role. Account, Budget and
// Actual drive the pipeline; Percent and Period are optional extras.
type ColumnRoles struct {
	Account ColumnBinding
	Budget  ColumnBinding
	Actual  ColumnBinding
	Percent ColumnBinding
	Period  ColumnBinding
}

// Detected renders the bindings for reporting, in fixed role order.
func (r ColumnRoles) Detected() []domain.DetectedColumn {
	out := make([]domain.DetectedColumn, 0, 5)
	for _, rc := range []struct {
		role string
		b    ColumnBinding
	}{
		{"akun", r.Account},
		{"anggaran", r.Budget},
		{"realisasi", r.Actual},
		{"persentase", r.Percent},
		{"tahun", r.Period},
	} {
		out = append(out, domain.DetectedColumn{
			Role:   rc.role,
			Header: rc.b.Header,
			Index:  rc.b.Index,
			Origin: rc.b.Origin,
		})
	}
	return out
}

// ResolveColumn finds the first header matching any keyword, walking keywords
// in priority order and headers left to right. Matching is case-insensitive
// substring containment, so a header "Nilai Anggaran 2024" binds to the
// "anggaran" keyword.
func ResolveColumn(headers []string, keywords []string) (int, bool) {
	for _, k := range keywords {
		for i, h := range headers {
			if strings.Contains(strings.ToLower(h), strings.ToLower(k)) {
				return i, true
			}
		}
	}
	return -1, false
}

// ResolveRoles binds every semantic role against the header row, then repairs
// missing amount roles by sniffing for numeric-looking columns in the data
// rows. The account role always binds: when no header matches, the first
// column is assumed to hold the labels.
//
// The numeric sniff samples up to ten non-empty cells per column and accepts
// the column when every sampled cell contains digit content. Unbound amount
// roles then take the sniffed columns in order: budget gets the first
// candidate, actual the second (or the first when the second is already
// taken by budget).
//
// A MissingColumnError is returned only when both amount roles stay unbound
// after the sniff. One bound amount role is enough to proceed; the other
// side contributes zeros downstream.
func ResolveRoles(headers []string, rows [][]string) (ColumnRoles, error) {
	roles := ColumnRoles{
		Account: bindKeyword(headers, accountKeywords),
		Budget:  bindKeyword(headers, budgetKeywords),
		Actual:  bindKeyword(headers, actualKeywords),
		Percent: bindKeyword(headers, percentKeywords),
		Period:  bindKeyword(headers, periodKeywords),
	}

	if !roles.Account.Bound() && len(headers) > 0 {
		roles.Account = ColumnBinding{
			Index:  0,
			Header: headers[0],
			Origin: domain.ColumnOriginFallback,
		}
	}

	if !roles.Budget.Bound() || !roles.Actual.Bound() {
		candidates := numericCandidates(headers, rows)
		if !roles.Budget.Bound() && len(candidates) >= 1 {
			roles.Budget = fallbackBinding(headers, candidates[0])
		}
		if !roles.Actual.Bound() && len(candidates) >= 2 {
			idx := candidates[1]
			if idx == roles.Budget.Index {
				idx = candidates[0]
			}
			roles.Actual = fallbackBinding(headers, idx)
		}
	}

	if !roles.Budget.Bound() && !roles.Actual.Bound() {
		return roles, &MissingColumnError{Roles: []string{"anggaran", "realisasi"}}
	}
	return roles, nil
}

func bindKeyword(headers []string, keywords []string) ColumnBinding {
	if idx, ok := ResolveColumn(headers, keywords); ok {
		return ColumnBinding{Index: idx, Header: headers[idx], Origin: domain.ColumnOriginHeader}
	}
	return ColumnBinding{Index: -1, Origin: domain.ColumnOriginNone}
}

func fallbackBinding(headers []string, idx int) ColumnBinding {
	header := ""
	if idx < len(headers) {
		header = headers[idx]
	}
	return ColumnBinding{Index: idx, Header: header, Origin: domain.ColumnOriginFallback}
}

// numericCandidates returns, in column order, the indexes whose sampled
// cells all look numeric. Columns with no non-empty cells never qualify.
func numericCandidates(headers []string, rows [][]string) []int {
	var out []int
	for col := range headers {
		sampled := 0
		numeric := true
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			if !looksNumeric(cell) {
				numeric = false
				break
			}
			sampled++
			if sampled == numericSniffRows {
				break
			}
		}
		if numeric && sampled > 0 {
			out = append(out, col)
		}
	}
	return out
}
