package domain

import "time"

// ColumnOrigin says how a semantic role was bound to a sheet column.
type ColumnOrigin string

const (
	// ColumnOriginHeader means a role keyword matched the column header.
	ColumnOriginHeader ColumnOrigin = "header"
	// ColumnOriginFallback means the caller-owned fallback assigned the
	// column (first column for the account role, numeric sniff for amounts).
	ColumnOriginFallback ColumnOrigin = "fallback"
	// ColumnOriginNone means the role stayed unbound.
	ColumnOriginNone ColumnOrigin = "none"
)

// DetectedColumn reports one resolved role for the dashboard's
// "Detected columns" line.
type DetectedColumn struct {
	Role   string       `json:"role"`
	Header string       `json:"header,omitempty"`
	Index  int          `json:"index"`
	Origin ColumnOrigin `json:"origin"`
}

// PreviewRow is one cleaned row of the preview table (the source showed the
// first 50 cleaned rows).
type PreviewRow struct {
	Account  string      `json:"account"`
	Budget   float64     `json:"budget"`
	Actual   float64     `json:"actual"`
	Category CategoryTag `json:"category"`
	Period   string      `json:"period,omitempty"`
}

// AggregateRow is one row of the per-category export table.
type AggregateRow struct {
	Category CategoryTag `json:"category"`
	Budget   float64     `json:"budget"`
	Actual   float64     `json:"actual"`
}

// ChartSlice is one slice of the spending-composition pie
// (Belanja Operasi / Belanja Modal / Belanja Lainnya).
type ChartSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TrendPoint is one point of the per-period total-actual trend line.
type TrendPoint struct {
	Period string  `json:"period"`
	Actual float64 `json:"actual"`
}

// AnalysisReport is the full renderer payload for one analysis run.
type AnalysisReport struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Sheet       string    `json:"sheet"`
	GeneratedAt time.Time `json:"generated_at"`

	RowCount        int `json:"row_count"`
	ClassifiedCount int `json:"classified_count"`

	Columns []DetectedColumn `json:"columns"`
	Preview []PreviewRow     `json:"preview"`

	Totals    CategoryTotals  `json:"totals"`
	Operating OperatingTotals `json:"operating"`
	Periods   *PeriodTotals   `json:"periods,omitempty"`

	Ratios   RatioSet  `json:"ratios"`
	Insights []Insight `json:"insights"`

	Aggregates  []AggregateRow `json:"aggregates"`
	Composition []ChartSlice   `json:"composition"`
	Trend       []TrendPoint   `json:"trend,omitempty"`

	Narrative string `json:"narrative,omitempty"`
}

// InsightSentences flattens the insights to the plain ordered sentence
// sequence the interpretation contract promises.
func (r *AnalysisReport) InsightSentences() []string {
	sentences := make([]string, 0, len(r.Insights))
	for _, ins := range r.Insights {
		sentences = append(sentences, ins.Text)
	}
	return sentences
}
