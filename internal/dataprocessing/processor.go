package dataprocessing

import (
	"strings"

	"apbdcli/pkg/contracts/domain"
)

// BuildStatistics represents row materialization statistics
type BuildStatistics struct {
	TotalRows  int
	EmptyRows  int
	Items      int
	Classified int
	Periods    int
}

// BuildItems materializes classified line items from raw sheet rows using the
// resolved column bindings. Each row yields one item: the account label is
// trimmed, the amount cells are kept raw and normalized into floats, and the
// label is classified. Rows whose cells are all blank are dropped.
//
// Unbound roles contribute zero values: a missing budget column leaves
// BudgetAmount at 0.0 for every item, and a missing period column leaves
// Period empty.
func BuildItems(sheet *Sheet, roles ColumnRoles) []domain.BudgetLineItem {
	items, _ := BuildItemsWithStats(sheet, roles)
	return items
}

// BuildItemsWithStats performs materialization and returns statistics
func BuildItemsWithStats(sheet *Sheet, roles ColumnRoles) ([]domain.BudgetLineItem, BuildStatistics) {
	stats := BuildStatistics{TotalRows: len(sheet.Rows)}
	items := make([]domain.BudgetLineItem, 0, len(sheet.Rows))
	periods := make(map[string]bool)

	for _, row := range sheet.Rows {
		if blankRow(row) {
			stats.EmptyRows++
			continue
		}

		label := strings.TrimSpace(cellAt(row, roles.Account))
		budgetRaw := cellAt(row, roles.Budget)
		actualRaw := cellAt(row, roles.Actual)
		period := strings.TrimSpace(cellAt(row, roles.Period))

		item := domain.BudgetLineItem{
			AccountLabel: label,
			BudgetRaw:    budgetRaw,
			ActualRaw:    actualRaw,
			Period:       period,
			BudgetAmount: NormalizeNumber(budgetRaw),
			ActualAmount: NormalizeNumber(actualRaw),
			Category:     ClassifyAccount(label),
		}
		items = append(items, item)

		stats.Items++
		if item.Category != domain.CategoryLainnya {
			stats.Classified++
		}
		if period != "" {
			periods[period] = true
		}
	}

	stats.Periods = len(periods)
	return items, stats
}

// Preview returns the first limit items shaped for display.
func Preview(items []domain.BudgetLineItem, limit int) []domain.PreviewRow {
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	out := make([]domain.PreviewRow, 0, limit)
	for _, item := range items[:limit] {
		out = append(out, domain.PreviewRow{
			Account:  item.AccountLabel,
			Budget:   item.BudgetAmount,
			Actual:   item.ActualAmount,
			Category: item.Category,
			Period:   item.Period,
		})
	}
	return out
}

// cellAt returns the cell bound to a role, empty when the role is unbound or
// the row is too short. Sheets routinely carry ragged rows.
func cellAt(row []string, b ColumnBinding) string {
	if !b.Bound() || b.Index < 0 || b.Index >= len(row) {
		return ""
	}
	return row[b.Index]
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
