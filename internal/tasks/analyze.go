package tasks

import (
	"context"
	"encoding/json"

	"github.com/vulpescelare/cortex-engine/internal/models"
)

// analyzeAuditLogs loads the audit log behind log_path, windows it, and
// returns the audit summary with recommendations.
func (s *Service) analyzeAuditLogs(ctx context.Context, raw json.RawMessage) (any, error) {
	var in models.AnalyzeInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	rs, err := s.loader.Load(ctx, in.LogPath)
	if err != nil {
		return nil, err
	}

	lookback := s.defaults.LookbackDays
	if in.LookbackDays != nil && *in.LookbackDays > 0 {
		lookback = *in.LookbackDays
	}

	summary := s.aggregator.Summarize(rs, lookback)
	summary.Recommendations = append(summary.Recommendations, s.advisor.Advise(summary)...)
	return summary, nil
}

// calibrateThresholds loads labeled predictions and runs the threshold
// sweep.
func (s *Service) calibrateThresholds(ctx context.Context, raw json.RawMessage) (any, error) {
	var in models.CalibrateInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	rs, err := s.loader.Load(ctx, in.PredictionsPath)
	if err != nil {
		return nil, err
	}

	target := s.defaults.TargetSensitivity
	if in.TargetSensitivity != nil && *in.TargetSensitivity > 0 && *in.TargetSensitivity <= 1 {
		target = *in.TargetSensitivity
	}

	return s.calibrator.Calibrate(rs, target)
}
