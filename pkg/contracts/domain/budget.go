package domain

import "strings"

// BudgetLineItem is one record of an uploaded APBD sheet. The raw fields are
// kept exactly as supplied; the derived fields are filled by the processing
// pipeline and never by the reader.
type BudgetLineItem struct {
	AccountLabel string `json:"account_label" validate:"required"`
	BudgetRaw    string `json:"budget_raw,omitempty"`
	ActualRaw    string `json:"actual_raw,omitempty"`
	Period       string `json:"period,omitempty"`

	// Derived by the pipeline.
	BudgetAmount float64     `json:"budget_amount"`
	ActualAmount float64     `json:"actual_amount"`
	Category     CategoryTag `json:"category"`
}

// CategoryTag is the closed account-category enumeration. Declaration order
// is the classification priority order and the canonical display order;
// LAINNYA is the catch-all and is never matched by a rule.
type CategoryTag string

const (
	CategoryPAD                 CategoryTag = "PAD"
	CategoryTransfer            CategoryTag = "TRANSFER"
	CategoryPendapatan          CategoryTag = "PENDAPATAN"
	CategoryBelanjaOperasi      CategoryTag = "BELANJA_OPERASI"
	CategoryBelanjaModal        CategoryTag = "BELANJA_MODAL"
	CategoryBelanjaLainnya      CategoryTag = "BELANJA_LAINNYA"
	CategoryBelanjaTidakTerduga CategoryTag = "BELANJA_TIDAK_TERDUGA"
	CategoryPembiayaan          CategoryTag = "PEMBIAYAAN"
	CategoryLainnya             CategoryTag = "LAINNYA"
)

// CategoryOrder lists every tag in priority/display order.
var CategoryOrder = []CategoryTag{
	CategoryPAD,
	CategoryTransfer,
	CategoryPendapatan,
	CategoryBelanjaOperasi,
	CategoryBelanjaModal,
	CategoryBelanjaLainnya,
	CategoryBelanjaTidakTerduga,
	CategoryPembiayaan,
	CategoryLainnya,
}

// IsValid checks if the tag is a member of the closed enumeration.
func (c CategoryTag) IsValid() bool {
	switch c {
	case CategoryPAD, CategoryTransfer, CategoryPendapatan,
		CategoryBelanjaOperasi, CategoryBelanjaModal, CategoryBelanjaLainnya,
		CategoryBelanjaTidakTerduga, CategoryPembiayaan, CategoryLainnya:
		return true
	}
	return false
}

// IsSpending reports whether the tag denotes spending. The spending family
// is defined textually (every BELANJA_* tag) so a future tag named the same
// way joins the family automatically.
func (c CategoryTag) IsSpending() bool {
	return strings.HasPrefix(string(c), "BELANJA")
}

// IsRevenue reports whether the tag belongs to the revenue family
// (PAD + TRANSFER + PENDAPATAN).
func (c CategoryTag) IsRevenue() bool {
	return c == CategoryPAD || c == CategoryTransfer || c == CategoryPendapatan
}

// Totals holds the summed budget and actual amounts for one category.
type Totals struct {
	Budget float64 `json:"budget"`
	Actual float64 `json:"actual"`
}

// Add accumulates another Totals into this one.
func (t Totals) Add(other Totals) Totals {
	return Totals{Budget: t.Budget + other.Budget, Actual: t.Actual + other.Actual}
}

// CategoryTotals maps a category to its summed budget/actual amounts.
// Categories with no items are absent; callers treat absence as zero via Get.
type CategoryTotals map[CategoryTag]Totals

// Get returns the totals for a tag, zero-valued when the tag is absent.
func (ct CategoryTotals) Get(tag CategoryTag) Totals {
	return ct[tag]
}

// Merge sums another CategoryTotals into a new map. Aggregation additivity:
// merging the totals of two disjoint row subsets equals the totals of the
// union.
func (ct CategoryTotals) Merge(other CategoryTotals) CategoryTotals {
	merged := make(CategoryTotals, len(ct)+len(other))
	for tag, t := range ct {
		merged[tag] = t
	}
	for tag, t := range other {
		merged[tag] = merged[tag].Add(t)
	}
	return merged
}

// SpendingBudget sums budgets across every spending-family category.
func (ct CategoryTotals) SpendingBudget() float64 {
	var sum float64
	for tag, t := range ct {
		if tag.IsSpending() {
			sum += t.Budget
		}
	}
	return sum
}

// SpendingActual sums actuals across every spending-family category.
func (ct CategoryTotals) SpendingActual() float64 {
	var sum float64
	for tag, t := range ct {
		if tag.IsSpending() {
			sum += t.Actual
		}
	}
	return sum
}

// RevenueActual sums actuals across the revenue family.
func (ct CategoryTotals) RevenueActual() float64 {
	var sum float64
	for tag, t := range ct {
		if tag.IsRevenue() {
			sum += t.Actual
		}
	}
	return sum
}

// OperatingTotals carries the sub-operating spend breakdown when the sheet
// tracks personnel and goods/services accounts separately. Tracked stays
// false when no account label matched the corresponding keyword subset, which
// is how a missing breakdown is told apart from a genuinely zero one.
type OperatingTotals struct {
	Pegawai           Totals `json:"pegawai"`
	BarangJasa        Totals `json:"barang_jasa"`
	PegawaiTracked    bool   `json:"pegawai_tracked"`
	BarangJasaTracked bool   `json:"barang_jasa_tracked"`
}

// PeriodTotals is the two-period partition used by the growth ratios. Both
// snapshots are restricted to the revenue and spending families and cover the
// two chronologically latest period tags.
type PeriodTotals struct {
	PreviousPeriod string         `json:"previous_period"`
	CurrentPeriod  string         `json:"current_period"`
	Previous       CategoryTotals `json:"previous"`
	Current        CategoryTotals `json:"current"`
}
