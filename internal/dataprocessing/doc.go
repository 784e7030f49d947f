// Package dataprocessing provides the ingestion pipeline for APBD budget
// workbooks. It consolidates reading, numeric normalization, column
// resolution, account classification and aggregation into a cohesive package
// that covers the lifecycle from Excel ingestion to category totals.
//
// # Architecture
//
// The package is organized into five components:
//
// 1. Reader: opens an Excel workbook and extracts the header row plus raw cell rows
// 2. Normalizer: converts heterogeneous numeric text into floats
// 3. Resolver: binds arbitrary column headers to semantic roles
// 4. Classifier: maps free-text account labels onto the fixed category set
// 5. Aggregator: sums budget/actual per category and partitions periods
//
// # Usage
//
// Basic ingestion example:
//
//	sheet, err := dataprocessing.ReadWorkbookFile("apbd_2024.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	roles, err := dataprocessing.ResolveRoles(sheet.Headers, sheet.Rows)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	items := dataprocessing.BuildItems(sheet, roles)
//	totals := dataprocessing.Aggregate(items)
//
// Numeric normalization on its own:
//
//	v := dataprocessing.NormalizeNumber("Rp 1.234.567,89") // 1234567.89
//
// # Data Flow
//
// The typical data flow through this package:
//
//	Excel File → Reader → Sheet → Resolver → ColumnRoles → BuildItems →
//	BudgetLineItems → Aggregator → CategoryTotals / PeriodTotals
//
// # Error Handling
//
// Malformed numeric cells are absorbed as 0.0 and never abort a run. The one
// fatal condition is an unresolvable amount column: when neither the budget
// nor the actual role can be bound, even after the numeric-sniff fallback,
// ResolveRoles returns a MissingColumnError. A single missing amount role is
// tolerated and contributes zeros.
//
// # Purity
//
// Normalizer, Classifier and Aggregator are pure functions over their inputs:
// no I/O, no shared state, no logging. Only the Reader touches files, which
// keeps the per-row stages trivially testable.
//
// # Testing
//
// The package includes table-driven tests for all components. Workbook
// fixtures are generated with excelize into temporary directories.
package dataprocessing
