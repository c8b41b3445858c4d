package models

// ThresholdSample is one sweep point of the threshold calibration. All rates
// lie in [0,1]; f1 may be the floor-clamped harmonic mean when precision and
// sensitivity are both near zero.
type ThresholdSample struct {
	Threshold   float64 `json:"threshold"`
	Sensitivity float64 `json:"sensitivity"`
	Specificity float64 `json:"specificity"`
	Precision   float64 `json:"precision"`
	F1          float64 `json:"f1"`
}

// CalibrationResult is the calibrator output: the chosen operating threshold,
// the trapezoidal ROC AUC estimate, and the full ascending sweep.
type CalibrationResult struct {
	OptimalThreshold  float64           `json:"optimal_threshold"`
	TargetSensitivity float64           `json:"target_sensitivity"`
	ROCAUC            float64           `json:"roc_auc"`
	ThresholdAnalysis []ThresholdSample `json:"threshold_analysis"`
}
