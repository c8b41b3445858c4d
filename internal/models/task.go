package models

import "encoding/json"

// TaskRequest is the JSON request read from the bridge channel.
type TaskRequest struct {
	Task  string          `json:"task"`
	Input json.RawMessage `json:"input"`
}

// TaskResponse is the uniform envelope written back. Exactly one of Result
// or Error is populated; AvailableTasks accompanies unknown-task rejections.
type TaskResponse struct {
	Success        bool     `json:"success"`
	Result         any      `json:"result,omitempty"`
	Error          string   `json:"error,omitempty"`
	AvailableTasks []string `json:"available_tasks,omitempty"`
}

// AnalyzeInput parametrises the analyze_audit_logs task.
type AnalyzeInput struct {
	LogPath      string `json:"log_path"`
	LookbackDays *int   `json:"lookback_days"`
}

// CalibrateInput parametrises the calibrate_thresholds task.
type CalibrateInput struct {
	PredictionsPath   string   `json:"predictions_path"`
	TargetSensitivity *float64 `json:"target_sensitivity"`
}

// TrainInput parametrises the train_ocr_model stub.
type TrainInput struct {
	TrainingDataPath string `json:"training_data_path"`
	Epochs           *int   `json:"epochs"`
	OutputPath       string `json:"output_path"`
}

// ExportInput parametrises the export_onnx stub.
type ExportInput struct {
	ModelPath  string `json:"model_path"`
	OutputPath string `json:"output_path"`
	InputShape []int  `json:"input_shape"`
}
