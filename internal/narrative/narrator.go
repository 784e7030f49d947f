// Package narrative generates the optional plain-language summary of an
// analysis run. The feature degrades to an empty narrative on any failure;
// it never blocks or fails the analysis itself.
package narrative

import (
	"context"

	"apbdcli/pkg/contracts/domain"
)

// Narrator produces an Indonesian plain-language summary over the
// per-category aggregates of an analysis run.
type Narrator interface {
	// Narrate summarizes the topN largest categories by realized amount.
	// Implementations must respect ctx cancellation.
	Narrate(ctx context.Context, rows []domain.AggregateRow, topN int) (string, error)
}
