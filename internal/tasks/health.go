package tasks

import "runtime"

// healthCheck reports service status, the task registry, and the capability
// flags resolved at startup. Absent capabilities are reported false, never
// as a failure.
func (s *Service) healthCheck() any {
	return map[string]any{
		"status":         "healthy",
		"engine_version": s.version,
		"go_version":     runtime.Version(),
		"capabilities": map[string]bool{
			"sqlite_driver": s.caps.SQLiteDriver,
			"model_store":   s.caps.ModelStore,
			"advisory_pack": s.caps.AdvisoryPack,
			"onnx_exporter": s.caps.ONNXExporter,
		},
		"available_tasks": AvailableTasks(),
	}
}
