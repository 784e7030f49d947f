package exporter

import (
	"fmt"
	"strconv"
)

// formatAmount formats a rupiah sum for CSV output. Shortest exact
// notation, so whole-number budget figures come out without a trailing
// ".00" and fractional cents survive a round-trip.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatPercent formats a percentage with exactly 2 decimal places
// This ensures values like 13.4 appear as 13.40 in CSV
func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatCount formats an integer count for CSV output
func formatCount(i int) string {
	return strconv.Itoa(i)
}
