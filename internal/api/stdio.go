// Package api owns the process-boundary transports: the stdin/stdout JSON
// bridge and the serve-mode gRPC health listener.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/tasks"
)

// Bridge serves the JSON task protocol over a request/response text channel.
type Bridge struct {
	service *tasks.Service
	logger  *slog.Logger
	in      io.Reader
	out     io.Writer
}

// NewBridge constructs a Bridge bound to the supplied streams.
func NewBridge(service *tasks.Service, logger *slog.Logger, in io.Reader, out io.Writer) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{service: service, logger: logger, in: in, out: out}
}

// RunOnce reads the whole request from the input stream and writes exactly
// one JSON response line. Every failure is folded into the envelope: the
// process-level contract is that one response is always produced.
func (b *Bridge) RunOnce(ctx context.Context) error {
	raw, err := io.ReadAll(b.in)
	if err != nil {
		return b.write(models.TaskResponse{Success: false, Error: fmt.Sprintf("Unexpected error: %v", err)})
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return b.write(models.TaskResponse{Success: false, Error: "No input received"})
	}

	var req models.TaskRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return b.write(models.TaskResponse{Success: false, Error: fmt.Sprintf("Invalid JSON: %v", err)})
	}

	return b.write(b.service.Dispatch(ctx, req))
}

// Serve processes newline-delimited requests until the stream ends or ctx is
// cancelled: one response line per request, and a task is fully resolved
// before the next line is read.
func (b *Bridge) Serve(ctx context.Context) error {
	sc := bufio.NewScanner(b.in)
	sc.Buffer(make([]byte, 0, 64*1024), 10<<20)

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var req models.TaskRequest
		if err := json.Unmarshal(line, &req); err != nil {
			if werr := b.write(models.TaskResponse{Success: false, Error: fmt.Sprintf("Invalid JSON: %v", err)}); werr != nil {
				return werr
			}
			continue
		}

		if err := b.write(b.service.Dispatch(ctx, req)); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (b *Bridge) write(resp models.TaskResponse) error {
	if err := json.NewEncoder(b.out).Encode(resp); err != nil {
		b.logger.Error("response write failed", slog.Any("error", err))
		return err
	}
	return nil
}
