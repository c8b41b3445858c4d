package tasks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

// trainOCRModel is a stub: fine-tuning happens in the upstream model
// pipeline. The handler validates the request and echoes the plan the
// pipeline would need.
func (s *Service) trainOCRModel(raw json.RawMessage) (any, error) {
	var in models.TrainInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	if in.TrainingDataPath == "" {
		return nil, utils.NewAppError("tasks.trainOCRModel", utils.KindNotFound, "Training data not found: ", nil)
	}
	if _, err := os.Stat(in.TrainingDataPath); err != nil {
		return nil, utils.NewAppError("tasks.trainOCRModel", utils.KindNotFound, fmt.Sprintf("Training data not found: %s", in.TrainingDataPath), nil)
	}

	epochs := 10
	if in.Epochs != nil && *in.Epochs > 0 {
		epochs = *in.Epochs
	}
	outputPath := in.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(s.defaults.ModelDir, "fine_tuned_ocr.onnx")
	}

	return map[string]any{
		"status":  "not_implemented",
		"message": "Full training requires labeled medical document images.",
		"requirements": []string{
			"training_images/: directory of text images",
			"labels.csv: text labels for each image",
		},
		"next_steps": []string{
			"Collect domain-specific training data",
			"Label with actual text content",
			"Run training with: epochs >= 50 for good results",
		},
		"config": map[string]any{
			"epochs_requested": epochs,
			"output_path":      outputPath,
		},
	}, nil
}

// exportONNX is a stub: the export itself is owned by the model-quantization
// pipeline. Without the exporter toolchain the task degrades, not the
// service.
func (s *Service) exportONNX(raw json.RawMessage) (any, error) {
	var in models.ExportInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	if !s.caps.ONNXExporter {
		return nil, utils.NewAppError("tasks.exportONNX", utils.KindDependencyUnavailable,
			"ONNX exporter not available. Install the model pipeline toolchain into the model store.", nil)
	}

	if in.ModelPath == "" {
		return nil, utils.NewAppError("tasks.exportONNX", utils.KindNotFound, "Model not found: ", nil)
	}
	if _, err := os.Stat(in.ModelPath); err != nil {
		return nil, utils.NewAppError("tasks.exportONNX", utils.KindNotFound, fmt.Sprintf("Model not found: %s", in.ModelPath), nil)
	}

	outputPath := in.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(s.defaults.ModelDir, "model.onnx")
	}
	inputShape := in.InputShape
	if len(inputShape) == 0 {
		inputShape = []int{1, 3, 224, 224}
	}

	return map[string]any{
		"status":      "not_implemented",
		"message":     "Export is delegated to the model-quantization pipeline.",
		"model_path":  in.ModelPath,
		"output_path": outputPath,
		"input_shape": inputShape,
	}, nil
}
