// Package tasks routes task requests to their handlers and owns the
// request/response envelope contract.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vulpescelare/cortex-engine/internal/engine"
	"github.com/vulpescelare/cortex-engine/internal/loader"
	"github.com/vulpescelare/cortex-engine/internal/metrics"
	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

// Task names accepted by the router, in registry order.
const (
	TaskAnalyzeAuditLogs    = "analyze_audit_logs"
	TaskCalibrateThresholds = "calibrate_thresholds"
	TaskTrainOCRModel       = "train_ocr_model"
	TaskExportONNX          = "export_onnx"
	TaskHealthCheck         = "health_check"
)

// AvailableTasks lists every routable task.
func AvailableTasks() []string {
	return []string{
		TaskAnalyzeAuditLogs,
		TaskCalibrateThresholds,
		TaskTrainOCRModel,
		TaskExportONNX,
		TaskHealthCheck,
	}
}

// Capabilities carries optional-feature flags resolved once at startup and
// injected here; handlers never probe the environment themselves.
type Capabilities struct {
	SQLiteDriver bool
	ModelStore   bool
	AdvisoryPack bool
	ONNXExporter bool
}

// Defaults carries config-level task defaults applied when a request omits
// the corresponding input.
type Defaults struct {
	LookbackDays      int
	TargetSensitivity float64
	ModelDir          string
}

// Service dispatches task requests. Each invocation is independent and
// stateless: record sets are loaded per call and released when the handler
// returns.
type Service struct {
	logger     *slog.Logger
	loader     *loader.Loader
	aggregator *engine.Aggregator
	calibrator *engine.Calibrator
	advisor    *engine.Advisor
	caps       Capabilities
	defaults   Defaults
	latencies  *utils.LatencyTracker
	version    string
}

// NewService constructs the task service facade.
func NewService(
	logger *slog.Logger,
	ld *loader.Loader,
	aggregator *engine.Aggregator,
	calibrator *engine.Calibrator,
	advisor *engine.Advisor,
	caps Capabilities,
	defaults Defaults,
	version string,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if defaults.LookbackDays <= 0 {
		defaults.LookbackDays = 30
	}
	if defaults.TargetSensitivity <= 0 || defaults.TargetSensitivity > 1 {
		defaults.TargetSensitivity = 0.95
	}
	return &Service{
		logger:     logger,
		loader:     ld,
		aggregator: aggregator,
		calibrator: calibrator,
		advisor:    advisor,
		caps:       caps,
		defaults:   defaults,
		latencies:  utils.NewLatencyTracker(1024),
		version:    version,
	}
}

// Dispatch resolves one task request into a response envelope. Unknown tasks
// are rejected before any handler runs; handler failures are folded into the
// envelope so nothing escapes the task boundary unformatted.
func (s *Service) Dispatch(ctx context.Context, req models.TaskRequest) models.TaskResponse {
	if !known(req.Task) {
		return models.TaskResponse{
			Success:        false,
			Error:          fmt.Sprintf("Unknown task: %s", req.Task),
			AvailableTasks: AvailableTasks(),
		}
	}

	start := time.Now()
	result, err := s.route(ctx, req.Task, req.Input)
	duration := time.Since(start)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveTask(req.Task, duration, outcome)
	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("task latency",
			slog.Duration("p95", s.latencies.Percentile(95)),
			slog.Int("samples", count))
	}

	if err != nil {
		s.logger.Error("task failed",
			slog.String("task", req.Task),
			slog.String("kind", string(utils.KindOf(err))),
			slog.Any("error", err))
		return models.TaskResponse{Success: false, Error: err.Error()}
	}
	return models.TaskResponse{Success: true, Result: result}
}

// route is the registry: one case per task, checked exhaustively at compile
// review rather than through a name-to-function map.
func (s *Service) route(ctx context.Context, task string, input json.RawMessage) (any, error) {
	switch task {
	case TaskAnalyzeAuditLogs:
		return s.analyzeAuditLogs(ctx, input)
	case TaskCalibrateThresholds:
		return s.calibrateThresholds(ctx, input)
	case TaskTrainOCRModel:
		return s.trainOCRModel(input)
	case TaskExportONNX:
		return s.exportONNX(input)
	case TaskHealthCheck:
		return s.healthCheck(), nil
	default:
		return nil, fmt.Errorf("unroutable task %q", task)
	}
}

func known(task string) bool {
	for _, name := range AvailableTasks() {
		if name == task {
			return true
		}
	}
	return false
}

// decodeInput unmarshals a task input payload; absent input means empty
// input.
func decodeInput(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return utils.NewAppError("tasks.decodeInput", utils.KindParseError, fmt.Sprintf("Invalid task input: %v", err), err)
	}
	return nil
}
