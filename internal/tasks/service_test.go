package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vulpescelare/cortex-engine/internal/engine"
	"github.com/vulpescelare/cortex-engine/internal/loader"
	"github.com/vulpescelare/cortex-engine/internal/models"
)

func newTestService(caps Capabilities) *Service {
	return NewService(
		nil,
		loader.New(0, "", nil),
		engine.NewAggregator(nil),
		engine.NewCalibrator(nil),
		nil,
		caps,
		Defaults{LookbackDays: 30, TargetSensitivity: 0.95, ModelDir: "./models"},
		"test",
	)
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDispatchUnknownTask(t *testing.T) {
	resp := newTestService(Capabilities{}).Dispatch(context.Background(), models.TaskRequest{Task: "foo"})

	if resp.Success {
		t.Fatal("expected failure for unknown task")
	}
	if resp.Error != "Unknown task: foo" {
		t.Fatalf("unexpected error: %q", resp.Error)
	}
	if diff := cmp.Diff(AvailableTasks(), resp.AvailableTasks); diff != "" {
		t.Fatalf("unexpected available tasks (-want +got):\n%s", diff)
	}
}

func TestDispatchHealthCheck(t *testing.T) {
	caps := Capabilities{SQLiteDriver: true, ModelStore: true}
	resp := newTestService(caps).Dispatch(context.Background(), models.TaskRequest{Task: TaskHealthCheck})

	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Error)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if result["status"] != "healthy" {
		t.Fatalf("unexpected status: %v", result["status"])
	}
	flags, ok := result["capabilities"].(map[string]bool)
	if !ok || !flags["sqlite_driver"] || flags["onnx_exporter"] {
		t.Fatalf("unexpected capabilities: %v", result["capabilities"])
	}
	tasks, ok := result["available_tasks"].([]string)
	if !ok || len(tasks) != 5 {
		t.Fatalf("unexpected task list: %v", result["available_tasks"])
	}
}

func TestDispatchAnalyze(t *testing.T) {
	path := writeCSV(t, "audit.csv",
		"confidence,false_negative,pattern_type\n"+
			"0.9,false,\n"+
			"0.3,true,ssn\n"+
			"0.4,true,ssn\n")

	input, _ := json.Marshal(models.AnalyzeInput{LogPath: path})
	resp := newTestService(Capabilities{}).Dispatch(context.Background(), models.TaskRequest{
		Task:  TaskAnalyzeAuditLogs,
		Input: input,
	})

	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Error)
	}
	summary, ok := resp.Result.(models.AuditSummary)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if summary.TotalRecords != 3 {
		t.Fatalf("expected 3 records, got %d", summary.TotalRecords)
	}
	if summary.FalseNegativeCount == nil || *summary.FalseNegativeCount != 2 {
		t.Fatalf("unexpected false negative count: %v", summary.FalseNegativeCount)
	}
	if len(summary.TopUnredactedPatterns) != 1 || summary.TopUnredactedPatterns[0].Pattern != "ssn" {
		t.Fatalf("unexpected patterns: %v", summary.TopUnredactedPatterns)
	}
}

func TestDispatchAnalyzeMissingFile(t *testing.T) {
	input := json.RawMessage(fmt.Sprintf(`{"log_path":%q}`, filepath.Join(t.TempDir(), "missing.csv")))
	resp := newTestService(Capabilities{}).Dispatch(context.Background(), models.TaskRequest{
		Task:  TaskAnalyzeAuditLogs,
		Input: input,
	})

	if resp.Success {
		t.Fatal("expected failure for a missing log")
	}
	if !strings.Contains(resp.Error, "Log file not found") {
		t.Fatalf("unexpected error: %q", resp.Error)
	}
	if resp.Result != nil {
		t.Fatal("failed tasks must carry no partial result")
	}
}

func TestDispatchCalibrate(t *testing.T) {
	path := writeCSV(t, "predictions.csv",
		"confidence,is_phi\n"+
			"0.9,true\n"+
			"0.8,true\n"+
			"0.2,false\n"+
			"0.1,false\n")

	input := json.RawMessage(fmt.Sprintf(`{"predictions_path":%q,"target_sensitivity":0.9}`, path))
	resp := newTestService(Capabilities{}).Dispatch(context.Background(), models.TaskRequest{
		Task:  TaskCalibrateThresholds,
		Input: input,
	})

	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Error)
	}
	result, ok := resp.Result.(models.CalibrationResult)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if result.TargetSensitivity != 0.9 {
		t.Fatalf("unexpected target: %f", result.TargetSensitivity)
	}
	if len(result.ThresholdAnalysis) != 18 {
		t.Fatalf("unexpected sweep size: %d", len(result.ThresholdAnalysis))
	}
}

func TestDispatchCalibrateMissingColumns(t *testing.T) {
	path := writeCSV(t, "predictions.csv", "confidence\n0.9\n")

	input := json.RawMessage(fmt.Sprintf(`{"predictions_path":%q}`, path))
	resp := newTestService(Capabilities{}).Dispatch(context.Background(), models.TaskRequest{
		Task:  TaskCalibrateThresholds,
		Input: input,
	})

	if resp.Success {
		t.Fatal("expected failure without ground truth")
	}
	if !strings.Contains(resp.Error, "Missing required columns: is_phi") {
		t.Fatalf("unexpected error: %q", resp.Error)
	}
}

func TestDispatchTrainStub(t *testing.T) {
	dir := t.TempDir()

	input := json.RawMessage(fmt.Sprintf(`{"training_data_path":%q}`, dir))
	resp := newTestService(Capabilities{}).Dispatch(context.Background(), models.TaskRequest{
		Task:  TaskTrainOCRModel,
		Input: input,
	})

	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if result["status"] != "not_implemented" {
		t.Fatalf("unexpected status: %v", result["status"])
	}
}

func TestDispatchExportWithoutExporter(t *testing.T) {
	resp := newTestService(Capabilities{}).Dispatch(context.Background(), models.TaskRequest{
		Task:  TaskExportONNX,
		Input: json.RawMessage(`{"model_path":"/tmp/model.pt"}`),
	})

	if resp.Success {
		t.Fatal("expected failure without the exporter toolchain")
	}
	if !strings.Contains(resp.Error, "ONNX exporter not available") {
		t.Fatalf("unexpected error: %q", resp.Error)
	}
}

func TestDispatchInvalidInput(t *testing.T) {
	resp := newTestService(Capabilities{}).Dispatch(context.Background(), models.TaskRequest{
		Task:  TaskAnalyzeAuditLogs,
		Input: json.RawMessage(`{"log_path":42}`),
	})

	if resp.Success {
		t.Fatal("expected failure for mistyped input")
	}
	if !strings.Contains(resp.Error, "Invalid task input") {
		t.Fatalf("unexpected error: %q", resp.Error)
	}
}
