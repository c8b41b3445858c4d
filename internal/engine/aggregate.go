package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

const (
	// falseNegativeRateCeiling is the rate above which thresholds are
	// considered too strict.
	falseNegativeRateCeiling = 0.05
	// lowConfidenceMean is the mean confidence below which retraining is
	// suggested.
	lowConfidenceMean = 0.7

	topPatternLimit = 10
)

// Aggregator computes audit-log summaries over a lookback window.
type Aggregator struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator constructs an Aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger, now: time.Now}
}

// Summarize filters rs to the lookback window and computes the audit
// summary. Sections backed by absent source columns are omitted, never
// zero-filled. The input records are not mutated.
func (a *Aggregator) Summarize(rs models.RecordSet, lookbackDays int) models.AuditSummary {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}

	records := rs.Records
	if rs.Columns.Timestamp {
		cutoff := a.now().AddDate(0, 0, -lookbackDays)
		kept := make([]models.AuditRecord, 0, len(records))
		for _, rec := range records {
			// Unparsable timestamps were degraded to nil at load time;
			// those rows fall outside any window.
			if rec.Timestamp == nil || rec.Timestamp.Before(cutoff) {
				continue
			}
			kept = append(kept, rec)
		}
		records = kept
	}

	summary := models.AuditSummary{
		TotalRecords:    len(records),
		DateRange:       dateRange(rs.Columns.Timestamp, records),
		Recommendations: []models.Recommendation{},
	}

	if rs.Columns.FalseNegative {
		count := 0
		for _, rec := range records {
			if rec.FalseNegative != nil && *rec.FalseNegative {
				count++
			}
		}
		summary.FalseNegativeCount = &count

		if rs.Columns.PatternType {
			summary.TopUnredactedPatterns = topMissedPatterns(records, topPatternLimit)
		}
	}

	if rs.Columns.Confidence {
		summary.ConfidenceDistribution = confidenceDistribution(records)
	}

	if rs.Columns.PHIType {
		summary.PHITypeStats = categoryStats(records)
	}

	summary.Recommendations = builtinRecommendations(summary)
	return summary
}

func dateRange(hasTimestamp bool, records []models.AuditRecord) models.DateRange {
	na := models.DateRange{Start: "N/A", End: "N/A"}
	if !hasTimestamp {
		return na
	}

	var min, max *time.Time
	for _, rec := range records {
		if rec.Timestamp == nil {
			continue
		}
		if min == nil || rec.Timestamp.Before(*min) {
			min = rec.Timestamp
		}
		if max == nil || rec.Timestamp.After(*max) {
			max = rec.Timestamp
		}
	}
	if min == nil {
		return na
	}
	return models.DateRange{
		Start: utils.FormatTimestamp(*min),
		End:   utils.FormatTimestamp(*max),
	}
}

// topMissedPatterns counts pattern_type among false-negative records and
// returns the most frequent, ties broken by first appearance.
func topMissedPatterns(records []models.AuditRecord, limit int) []models.PatternCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, rec := range records {
		if rec.FalseNegative == nil || !*rec.FalseNegative {
			continue
		}
		if rec.PatternType == nil {
			continue
		}
		pattern := *rec.PatternType
		if _, ok := counts[pattern]; !ok {
			firstSeen[pattern] = i
		}
		counts[pattern]++
	}
	if len(counts) == 0 {
		return nil
	}

	patterns := make([]models.PatternCount, 0, len(counts))
	for pattern, count := range counts {
		patterns = append(patterns, models.PatternCount{Pattern: pattern, Count: count})
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return firstSeen[patterns[i].Pattern] < firstSeen[patterns[j].Pattern]
	})

	if len(patterns) > limit {
		patterns = patterns[:limit]
	}
	return patterns
}

func confidenceDistribution(records []models.AuditRecord) *models.ConfidenceDistribution {
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if rec.Confidence != nil {
			values = append(values, *rec.Confidence)
		}
	}
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)

	m := mean(values)
	return &models.ConfidenceDistribution{
		Mean: m,
		Std:  sampleStdDev(values, m),
		Min:  values[0],
		Max:  values[len(values)-1],
		Percentiles: map[string]float64{
			"25": percentile(values, 25),
			"50": percentile(values, 50),
			"75": percentile(values, 75),
			"90": percentile(values, 90),
			"95": percentile(values, 95),
		},
	}
}

func categoryStats(records []models.AuditRecord) map[string]models.CategoryStats {
	groups := make(map[string][]float64)
	for _, rec := range records {
		if rec.PHIType == nil {
			continue
		}
		if rec.Confidence == nil {
			// Still surface the category, with no confidence samples.
			if _, ok := groups[*rec.PHIType]; !ok {
				groups[*rec.PHIType] = nil
			}
			continue
		}
		groups[*rec.PHIType] = append(groups[*rec.PHIType], *rec.Confidence)
	}
	if len(groups) == 0 {
		return nil
	}

	stats := make(map[string]models.CategoryStats, len(groups))
	for category, values := range groups {
		m := mean(values)
		stats[category] = models.CategoryStats{
			MeanConfidence: round4(m),
			StdConfidence:  round4(sampleStdDev(values, m)),
			Count:          len(values),
		}
	}
	return stats
}

// builtinRecommendations evaluates the fixed rule list, in order. Both rules
// are independent and may fire together; output order matches rule order.
func builtinRecommendations(summary models.AuditSummary) []models.Recommendation {
	recs := []models.Recommendation{}

	total := summary.TotalRecords
	if total < 1 {
		total = 1
	}
	if summary.FalseNegativeCount != nil && *summary.FalseNegativeCount > 0 {
		rate := float64(*summary.FalseNegativeCount) / float64(total)
		if rate > falseNegativeRateCeiling {
			recs = append(recs, models.Recommendation{
				Priority: models.PriorityHigh,
				Message:  fmt.Sprintf("False negative rate is %.1f%%. Consider lowering confidence thresholds.", rate*100),
			})
		}
	}

	if summary.ConfidenceDistribution != nil && summary.ConfidenceDistribution.Mean < lowConfidenceMean {
		recs = append(recs, models.Recommendation{
			Priority: models.PriorityMedium,
			Message:  "Average confidence is low. Consider retraining models on domain-specific data.",
		})
	}

	return recs
}
