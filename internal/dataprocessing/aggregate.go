package dataprocessing

import (
	"sort"
	"strconv"
	"strings"

	"apbdcli/pkg/contracts/domain"
)

// Keyword subsets for the operating-spend breakdown. These are narrower than
// the BELANJA_OPERASI classification rule: a sheet can have operating spend
// without itemizing personnel and goods/services lines, and the Tracked
// flags record whether any line actually matched.
var (
	pegawaiKeywords    = []string{"belanja pegawai"}
	barangJasaKeywords = []string{"belanja barang", "belanja jasa", "belanja barang dan jasa"}
)

// Aggregate sums budget and actual amounts per category over every item.
// Categories with no items are absent from the result.
func Aggregate(items []domain.BudgetLineItem) domain.CategoryTotals {
	totals := make(domain.CategoryTotals)
	for _, item := range items {
		t := totals[item.Category]
		t.Budget += item.BudgetAmount
		t.Actual += item.ActualAmount
		totals[item.Category] = t
	}
	return totals
}

// AggregateRows renders category totals as display rows in the canonical
// category order, skipping absent categories.
func AggregateRows(totals domain.CategoryTotals) []domain.AggregateRow {
	rows := make([]domain.AggregateRow, 0, len(totals))
	for _, tag := range domain.CategoryOrder {
		t, ok := totals[tag]
		if !ok {
			continue
		}
		rows = append(rows, domain.AggregateRow{Category: tag, Budget: t.Budget, Actual: t.Actual})
	}
	return rows
}

// AggregateOperating scans account labels for the personnel and
// goods/services keyword subsets and sums the matching lines. A line can
// feed both buckets only if its label matches both subsets, which real
// sheets do not produce.
func AggregateOperating(items []domain.BudgetLineItem) domain.OperatingTotals {
	var op domain.OperatingTotals
	for _, item := range items {
		label := strings.ToLower(item.AccountLabel)
		if containsAny(label, pegawaiKeywords...) {
			op.Pegawai.Budget += item.BudgetAmount
			op.Pegawai.Actual += item.ActualAmount
			op.PegawaiTracked = true
		}
		if containsAny(label, barangJasaKeywords...) {
			op.BarangJasa.Budget += item.BudgetAmount
			op.BarangJasa.Actual += item.ActualAmount
			op.BarangJasaTracked = true
		}
	}
	return op
}

// PeriodPartition builds the two-period snapshot for growth ratios. It
// returns nil unless the items carry at least two distinct non-empty period
// tags. The two chronologically latest periods become previous and current,
// and both snapshots are restricted to the revenue and spending families so
// growth compares like against like.
func PeriodPartition(items []domain.BudgetLineItem) *domain.PeriodTotals {
	periods := distinctPeriods(items)
	if len(periods) < 2 {
		return nil
	}

	prev := periods[len(periods)-2]
	curr := periods[len(periods)-1]
	pt := &domain.PeriodTotals{
		PreviousPeriod: prev,
		CurrentPeriod:  curr,
		Previous:       make(domain.CategoryTotals),
		Current:        make(domain.CategoryTotals),
	}

	for _, item := range items {
		if !item.Category.IsRevenue() && !item.Category.IsSpending() {
			continue
		}
		var side domain.CategoryTotals
		switch item.Period {
		case prev:
			side = pt.Previous
		case curr:
			side = pt.Current
		default:
			continue
		}
		t := side[item.Category]
		t.Budget += item.BudgetAmount
		t.Actual += item.ActualAmount
		side[item.Category] = t
	}
	return pt
}

// TrendPoints sums actual amounts per period across every item, ordered
// chronologically. Items without a period tag are excluded. Returns nil when
// no item carries a period.
func TrendPoints(items []domain.BudgetLineItem) []domain.TrendPoint {
	sums := make(map[string]float64)
	for _, item := range items {
		if item.Period == "" {
			continue
		}
		sums[item.Period] += item.ActualAmount
	}
	if len(sums) == 0 {
		return nil
	}

	periods := make([]string, 0, len(sums))
	for p := range sums {
		periods = append(periods, p)
	}
	sortPeriods(periods)

	out := make([]domain.TrendPoint, 0, len(periods))
	for _, p := range periods {
		out = append(out, domain.TrendPoint{Period: p, Actual: sums[p]})
	}
	return out
}

// BuildComposition shapes total spending into the three pie slices shown on
// the dashboard. The "other" slice is the remainder after operating and
// capital spend and is clamped at zero so rounding or partial data cannot
// produce a negative slice.
func BuildComposition(totals domain.CategoryTotals) []domain.ChartSlice {
	operasi := totals.Get(domain.CategoryBelanjaOperasi).Actual
	modal := totals.Get(domain.CategoryBelanjaModal).Actual
	other := totals.SpendingActual() - operasi - modal
	if other < 0 {
		other = 0
	}
	return []domain.ChartSlice{
		{Label: "Belanja Operasi", Value: operasi},
		{Label: "Belanja Modal", Value: modal},
		{Label: "Belanja Lainnya", Value: other},
	}
}

func distinctPeriods(items []domain.BudgetLineItem) []string {
	seen := make(map[string]bool)
	var periods []string
	for _, item := range items {
		if item.Period == "" || seen[item.Period] {
			continue
		}
		seen[item.Period] = true
		periods = append(periods, item.Period)
	}
	sortPeriods(periods)
	return periods
}

// sortPeriods orders period tags chronologically: numerically when both
// parse as numbers ("2024" after "2023", and "2024" after "999"), falling
// back to lexical comparison for free-form tags like "2024-Q1".
func sortPeriods(periods []string) {
	sort.SliceStable(periods, func(i, j int) bool {
		a, errA := strconv.ParseFloat(strings.TrimSpace(periods[i]), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(periods[j]), 64)
		if errA == nil && errB == nil {
			if a != b {
				return a < b
			}
			return periods[i] < periods[j]
		}
		return periods[i] < periods[j]
	})
}
