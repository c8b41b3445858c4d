package models

// Recommendation priorities, strongest first.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Recommendation is one piece of prioritized tuning guidance. Generated per
// request, never persisted.
type Recommendation struct {
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// DateRange reports the observed timestamp span, "N/A" when the source
// carried no usable timestamps.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PatternCount pairs a missed pattern with its frequency. A list rather than
// a map so descending-frequency order survives serialization.
type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// ConfidenceDistribution summarises the confidence column. Std is the sample
// standard deviation (n-1 denominator, zero below two samples).
type ConfidenceDistribution struct {
	Mean        float64            `json:"mean"`
	Std         float64            `json:"std"`
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	Percentiles map[string]float64 `json:"percentiles"`
}

// CategoryStats summarises confidence per PHI category.
type CategoryStats struct {
	MeanConfidence float64 `json:"mean_confidence"`
	StdConfidence  float64 `json:"std_confidence"`
	Count          int     `json:"count"`
}

// AuditSummary is the aggregator output. Sections tied to optional source
// columns are omitted entirely when the column is absent, never zero-filled.
type AuditSummary struct {
	TotalRecords           int                      `json:"total_records"`
	DateRange              DateRange                `json:"date_range"`
	FalseNegativeCount     *int                     `json:"false_negative_count,omitempty"`
	TopUnredactedPatterns  []PatternCount           `json:"top_unredacted_patterns,omitempty"`
	ConfidenceDistribution *ConfidenceDistribution  `json:"confidence_distribution,omitempty"`
	PHITypeStats           map[string]CategoryStats `json:"phi_type_stats,omitempty"`
	Recommendations        []Recommendation         `json:"recommendations"`
}
