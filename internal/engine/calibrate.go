package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

const (
	sweepStart = 0.10
	sweepStep  = 0.05
	sweepCount = 18

	// fallbackThreshold stands in when the target sensitivity is unreachable
	// at any sweep point. Kept from the shipped behavior; whether an
	// unreachable target should instead be an error is pending product
	// review.
	fallbackThreshold = 0.5

	// f1Epsilon floors the harmonic-mean denominator when precision and
	// sensitivity are both zero.
	f1Epsilon = 0.001
)

// Calibrator sweeps decision thresholds against labeled confidence scores.
// It is purely functional over its inputs: identical record sets and targets
// produce bit-identical results.
type Calibrator struct {
	logger *slog.Logger
}

// NewCalibrator constructs a Calibrator.
func NewCalibrator(logger *slog.Logger) *Calibrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calibrator{logger: logger}
}

// Calibrate runs the fixed 18-point sweep over [0.10, 0.95] and derives the
// operating threshold and the trapezoidal ROC AUC estimate. Rows missing a
// confidence or is_phi value are skipped; whole-column absence is fatal.
func (c *Calibrator) Calibrate(rs models.RecordSet, targetSensitivity float64) (models.CalibrationResult, error) {
	var missing []string
	if !rs.Columns.Confidence {
		missing = append(missing, "confidence")
	}
	if !rs.Columns.IsPHI {
		missing = append(missing, "is_phi")
	}
	if len(missing) > 0 {
		return models.CalibrationResult{}, utils.NewAppError(
			"engine.Calibrate",
			utils.KindMissingColumns,
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")),
			nil,
		)
	}

	type labeled struct {
		confidence float64
		positive   bool
	}
	samples := make([]labeled, 0, len(rs.Records))
	for _, rec := range rs.Records {
		if rec.Confidence == nil || rec.IsPHI == nil {
			continue
		}
		samples = append(samples, labeled{confidence: *rec.Confidence, positive: *rec.IsPHI})
	}

	analysis := make([]models.ThresholdSample, 0, sweepCount)
	for i := 0; i < sweepCount; i++ {
		threshold := math.Round((sweepStart+float64(i)*sweepStep)*100) / 100

		var tp, fp, fn, tn int
		for _, s := range samples {
			predicted := s.confidence >= threshold
			switch {
			case predicted && s.positive:
				tp++
			case predicted && !s.positive:
				fp++
			case !predicted && s.positive:
				fn++
			default:
				tn++
			}
		}

		sensitivity := float64(tp) / float64(floorOne(tp+fn))
		specificity := float64(tn) / float64(floorOne(tn+fp))
		precision := float64(tp) / float64(floorOne(tp+fp))
		f1 := 2 * precision * sensitivity / math.Max(precision+sensitivity, f1Epsilon)

		analysis = append(analysis, models.ThresholdSample{
			Threshold:   threshold,
			Sensitivity: sensitivity,
			Specificity: specificity,
			Precision:   precision,
			F1:          f1,
		})
	}

	// Lowest threshold meeting the sensitivity bar wins: the most permissive
	// operating point minimises missed detections.
	optimal := fallbackThreshold
	for _, point := range analysis {
		if point.Sensitivity >= targetSensitivity {
			optimal = point.Threshold
			break
		}
	}

	return models.CalibrationResult{
		OptimalThreshold:  optimal,
		TargetSensitivity: targetSensitivity,
		ROCAUC:            trapezoidAUC(analysis),
		ThresholdAnalysis: analysis,
	}, nil
}

// trapezoidAUC integrates the (false-positive-rate, sensitivity) pairs with
// the trapezoid rule. The estimate is bounded by sweep granularity, not a
// continuous-ROC exact value.
func trapezoidAUC(analysis []models.ThresholdSample) float64 {
	points := make([][2]float64, 0, len(analysis))
	for _, s := range analysis {
		points = append(points, [2]float64{1 - s.Specificity, s.Sensitivity})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i][0] != points[j][0] {
			return points[i][0] < points[j][0]
		}
		return points[i][1] < points[j][1]
	})

	auc := 0.0
	for i := 1; i < len(points); i++ {
		auc += (points[i][0] - points[i-1][0]) * (points[i][1] + points[i-1][1]) / 2
	}
	return clamp(auc, 0, 1)
}

func floorOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
