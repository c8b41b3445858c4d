package engine

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vulpescelare/cortex-engine/internal/models"
)

// Advisor appends advisory-pack recommendations to a computed summary. The
// two built-in rules always evaluate first and are not part of the pack.
type Advisor struct {
	rules  []AdvisoryRule
	logger *slog.Logger
}

// AdvisoryRule is a single pack entry: a guidance message gated by optional
// match conditions over the summary.
type AdvisoryRule struct {
	ID       string        `yaml:"id"`
	Priority string        `yaml:"priority"`
	Message  string        `yaml:"message"`
	Match    AdvisoryMatch `yaml:"match"`
}

// AdvisoryMatch defines optional conditions; nil conditions always match.
type AdvisoryMatch struct {
	MinFalseNegativeRate  *float64 `yaml:"min_false_negative_rate"`
	MaxMeanConfidence     *float64 `yaml:"max_mean_confidence"`
	PHIType               string   `yaml:"phi_type"`
	MaxTypeMeanConfidence *float64 `yaml:"max_type_mean_confidence"`
}

type advisoryPackFile struct {
	Advisories []AdvisoryRule `yaml:"advisories"`
}

// NewAdvisor loads the advisory pack from path. A missing file or empty path
// disables the feature: the advisor is nil and nil is safe to call.
func NewAdvisor(path string, logger *slog.Logger) (*Advisor, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var pack advisoryPackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{rules: pack.Advisories, logger: logger}, nil
}

// Advise evaluates the pack against the summary and returns matching
// recommendations in pack order, skipping messages the built-in rules already
// produced.
func (a *Advisor) Advise(summary models.AuditSummary) []models.Recommendation {
	if a == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(summary.Recommendations))
	for _, rec := range summary.Recommendations {
		seen[rec.Message] = struct{}{}
	}

	var extra []models.Recommendation
	for _, rule := range a.rules {
		if rule.Message == "" {
			continue
		}
		if !ruleMatches(rule.Match, summary) {
			continue
		}
		if _, ok := seen[rule.Message]; ok {
			continue
		}
		extra = append(extra, models.Recommendation{
			Priority: normalizePriority(rule.Priority),
			Message:  rule.Message,
		})
		seen[rule.Message] = struct{}{}
	}
	return extra
}

func ruleMatches(match AdvisoryMatch, summary models.AuditSummary) bool {
	if match.MinFalseNegativeRate != nil {
		if summary.FalseNegativeCount == nil {
			return false
		}
		total := summary.TotalRecords
		if total < 1 {
			total = 1
		}
		rate := float64(*summary.FalseNegativeCount) / float64(total)
		if rate < *match.MinFalseNegativeRate {
			return false
		}
	}
	if match.MaxMeanConfidence != nil {
		if summary.ConfidenceDistribution == nil {
			return false
		}
		if summary.ConfidenceDistribution.Mean > *match.MaxMeanConfidence {
			return false
		}
	}
	if match.PHIType != "" && match.MaxTypeMeanConfidence != nil {
		stats, ok := summary.PHITypeStats[match.PHIType]
		if !ok {
			return false
		}
		if stats.MeanConfidence > *match.MaxTypeMeanConfidence {
			return false
		}
	}
	return true
}

func normalizePriority(priority string) string {
	switch strings.ToUpper(strings.TrimSpace(priority)) {
	case models.PriorityHigh:
		return models.PriorityHigh
	case models.PriorityMedium:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
