package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quayrun/sandexec/internal/metrics"
	"github.com/quayrun/sandexec/types"
)

// BatchEvent is one item streamed out of RunBatchStreaming: either a
// completed ExecutionResult or the terminal error that ended the batch.
type BatchEvent struct {
	Result types.ExecutionResult
	Err    error
}

// RunBatchStreaming is RunBatch's incremental counterpart: it sends each
// execution's result on the returned channel as soon as it completes,
// so a caller streaming a response (e.g. over SSE) can forward results
// before the batch finishes. The channel is closed when the batch ends,
// whether by completion, die_on_error, or a hard error (sent as the
// final event's Err).
func RunBatchStreaming(ctx context.Context, w *Worker, request types.ExecutionRequest) <-chan BatchEvent {
	events := make(chan BatchEvent, 100)
	go func() {
		defer close(events)
		defer w.Cleanup()
		metrics.RequestsTotal.Inc()

		for _, file := range request.Files {
			if err := w.WriteFile(ctx, file); err != nil {
				events <- BatchEvent{Err: fmt.Errorf("failed to write file: %w", err)}
				return
			}
		}

		for _, exec := range request.Executions {
			result, err := w.Execute(ctx, exec)
			if err != nil {
				slog.Error("execution failed", "program", exec.Program, "error", err)
				events <- BatchEvent{Err: err}
				return
			}
			events <- BatchEvent{Result: result}

			if result.ExitCode != 0 && exec.DieOnError {
				return
			}
		}
	}()
	return events
}

// RunBatch runs executions sequentially against a single Worker: scratch
// and the tmp map persist across executions within the batch. A
// successful result with a non-zero exit_code stops the batch when that
// execution's DieOnError is set; a hard ExecutionError always stops the
// batch. Cleanup runs regardless of how the batch ends.
func RunBatch(ctx context.Context, w *Worker, request types.ExecutionRequest) ([]types.ExecutionResult, error) {
	defer w.Cleanup()
	metrics.RequestsTotal.Inc()

	for _, file := range request.Files {
		if err := w.WriteFile(ctx, file); err != nil {
			return nil, err
		}
	}

	results := make([]types.ExecutionResult, 0, len(request.Executions))
	for _, exec := range request.Executions {
		result, err := w.Execute(ctx, exec)
		if err != nil {
			slog.Error("execution failed", "program", exec.Program, "error", err)
			return results, err
		}
		results = append(results, result)

		if result.ExitCode != 0 && exec.DieOnError {
			break
		}
	}
	return results, nil
}
