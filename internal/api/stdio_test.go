package api

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vulpescelare/cortex-engine/internal/engine"
	"github.com/vulpescelare/cortex-engine/internal/loader"
	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/tasks"
)

func newTestBridge(in string, out *bytes.Buffer) *Bridge {
	service := tasks.NewService(
		nil,
		loader.New(0, "", nil),
		engine.NewAggregator(nil),
		engine.NewCalibrator(nil),
		nil,
		tasks.Capabilities{},
		tasks.Defaults{LookbackDays: 30, TargetSensitivity: 0.95},
		"test",
	)
	return NewBridge(service, nil, strings.NewReader(in), out)
}

func decodeLine(t *testing.T, line []byte) models.TaskResponse {
	t.Helper()
	var resp models.TaskResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, line)
	}
	return resp
}

func TestRunOnceEmptyInput(t *testing.T) {
	var out bytes.Buffer
	if err := newTestBridge("  \n", &out).RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	resp := decodeLine(t, out.Bytes())
	if resp.Success || resp.Error != "No input received" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRunOnceInvalidJSON(t *testing.T) {
	var out bytes.Buffer
	if err := newTestBridge("{not json", &out).RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	resp := decodeLine(t, out.Bytes())
	if resp.Success || !strings.HasPrefix(resp.Error, "Invalid JSON:") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRunOnceDispatches(t *testing.T) {
	var out bytes.Buffer
	if err := newTestBridge(`{"task":"health_check"}`, &out).RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	resp := decodeLine(t, out.Bytes())
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok || result["status"] != "healthy" {
		t.Fatalf("unexpected result: %v", resp.Result)
	}
}

func TestRunOnceUnknownTask(t *testing.T) {
	var out bytes.Buffer
	if err := newTestBridge(`{"task":"foo"}`, &out).RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	resp := decodeLine(t, out.Bytes())
	if resp.Success || resp.Error != "Unknown task: foo" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.AvailableTasks) != 5 {
		t.Fatalf("unexpected task list: %v", resp.AvailableTasks)
	}
}

func TestServeLineStream(t *testing.T) {
	in := `{"task":"health_check"}` + "\n\n" + `{"task":"nope"}` + "\n" + "garbage\n"
	var out bytes.Buffer
	if err := newTestBridge(in, &out).Serve(context.Background()); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	if len(lines) != 3 {
		t.Fatalf("expected 3 response lines, got %d:\n%s", len(lines), out.String())
	}
	if resp := decodeLine(t, lines[0]); !resp.Success {
		t.Fatalf("first request should succeed: %+v", resp)
	}
	if resp := decodeLine(t, lines[1]); resp.Success || resp.Error != "Unknown task: nope" {
		t.Fatalf("unexpected second response: %+v", resp)
	}
	if resp := decodeLine(t, lines[2]); resp.Success || !strings.HasPrefix(resp.Error, "Invalid JSON:") {
		t.Fatalf("unexpected third response: %+v", resp)
	}
}

func TestServeStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := newTestBridge(`{"task":"health_check"}`+"\n", &out).Serve(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if out.Len() != 0 {
		t.Fatalf("no responses expected after cancel, got %s", out.String())
	}
}
