// Package worker implements the per-request orchestrator: it owns a
// scratch root, a tmp map, and a sandbox template, and drives a batch of
// Executions through staging, spawn, drain, and normalize. Worker is the
// facade — everything else in this module is a collaborator it calls in
// sequence.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quayrun/sandexec/blobstore"
	"github.com/quayrun/sandexec/filerouter"
	"github.com/quayrun/sandexec/internal/metrics"
	"github.com/quayrun/sandexec/outputnorm"
	"github.com/quayrun/sandexec/procrunner"
	"github.com/quayrun/sandexec/sandbox"
	"github.com/quayrun/sandexec/scratchfs"
	"github.com/quayrun/sandexec/tmpstore"
	"github.com/quayrun/sandexec/types"
)

// Worker coordinates one request's sequence of Executions. It owns its
// scratch root and tmp map exclusively; the BlobStore is a shared
// capability passed in by the caller.
type Worker struct {
	fs      *scratchfs.FS
	blob    blobstore.Store
	tmp     *tmpstore.Store
	router  *filerouter.Router
	builder *sandbox.Builder
	runner  *procrunner.Runner
}

// New creates a fresh scratch root under scratchBase, builds the sandbox
// template, and returns a ready-to-use Worker. Failing to create the
// scratch root is fatal — the service cannot serve a request without one.
func New(scratchBase string, blob blobstore.Store, selfExe string) (*Worker, error) {
	root := filepath.Join(scratchBase, uuid.NewString())
	fs, err := scratchfs.New(root)
	if err != nil {
		return nil, types.NewExecutionError(types.KindSandboxInit, "failed to create scratch root", err)
	}

	tmp := tmpstore.New()
	return &Worker{
		fs:      fs,
		blob:    blob,
		tmp:     tmp,
		router:  filerouter.New(fs, blob, tmp),
		builder: sandbox.NewBuilder(root),
		runner:  procrunner.New(selfExe),
	}, nil
}

// WriteFile stages one preloaded file into scratch: Local writes inline
// content, Remote fetches from the blob store first.
func (w *Worker) WriteFile(ctx context.Context, file types.File) error {
	switch file.Kind {
	case types.FileLocal:
		return w.fs.CreateFile(file.Name, file.Content, false)
	case types.FileRemote:
		data, err := w.blob.Get(ctx, file.ID)
		if err != nil {
			return fmt.Errorf("fetching remote file %s: %w", file.ID, err)
		}
		return w.fs.CreateFile(file.Name, data, false)
	default:
		return fmt.Errorf("unsupported file kind %q", file.Kind)
	}
}

// Execute runs the full copy-in/spawn/drain/normalize sequence for one
// Execution. A non-nil *types.ExecutionError is the only error this
// returns; a non-zero exit code is a normal, successful ExecutionResult.
func (w *Worker) Execute(ctx context.Context, exec types.Execution) (types.ExecutionResult, error) {
	// Step 1: stage copy_in.
	var stdin []byte
	for _, transfer := range exec.CopyIn {
		data, err := w.router.ResolveCopyInSource(ctx, transfer.From, filerouter.Streams{})
		if err != nil {
			return types.ExecutionResult{}, types.NewExecutionError(types.KindInputStaging, "failed to resolve copy_in source", err)
		}
		if transfer.To.Kind == types.PathStdin {
			stdin = data
			continue
		}
		if err := w.router.Apply(ctx, transfer.To, data); err != nil {
			return types.ExecutionResult{}, types.NewExecutionError(types.KindInputStaging, "failed to apply copy_in sink", err)
		}
	}

	// Step 2: rlimits against the sandbox template.
	spec := w.builder.WithRlimits(exec.TimeLimit, exec.MemoryLimit)

	// Step 3+4: spawn, feed stdin, wait. The sandboxed program gets a
	// minimal environment, never the service's own — the host env may
	// carry blob-store credentials and other secrets an untrusted program
	// could exfiltrate via captured stdout/stderr.
	wallLimit := time.Duration(exec.WallTimeLimit) * time.Second
	if wallLimit <= 0 {
		wallLimit = time.Hour
	}
	env := []string{"PATH=/bin"}
	result, err := w.runner.Run(ctx, spec, exec.Program, exec.Args, env, stdin, wallLimit)
	if err != nil {
		return types.ExecutionResult{}, types.NewExecutionError(types.KindSpawnFailure, fmt.Sprintf("failed to spawn process: %v", err), err)
	}
	if result.MemoryUsedKB == 0 {
		slog.Warn("resource usage unavailable, substituting zero", "program", exec.Program)
	}

	// Step 5: normalize stdout.
	stdout := result.Stdout
	if exec.AutofixEnabled() {
		stdout = outputnorm.Autofix(stdout)
	}
	streams := filerouter.Streams{Stdout: stdout, Stderr: result.Stderr}

	// Step 6: drain copy_out only on a clean exit.
	if result.ExitCode == 0 {
		for _, transfer := range exec.CopyOut {
			data, err := w.router.Resolve(ctx, transfer.From, streams)
			if err != nil {
				return types.ExecutionResult{}, types.NewExecutionError(types.KindOutputStaging, "failed to resolve copy_out source", err)
			}
			if err := w.router.Apply(ctx, transfer.To, data); err != nil {
				return types.ExecutionResult{}, types.NewExecutionError(types.KindOutputStaging, "failed to apply copy_out sink", err)
			}
		}
	}

	// Step 7: drain return_files unconditionally, in declaration order.
	returnFiles := make([]types.ExecutionFile, 0, len(exec.ReturnFiles))
	for _, fp := range exec.ReturnFiles {
		file, err := w.router.TakeReturnFile(ctx, fp, streams)
		if err != nil {
			return types.ExecutionResult{}, types.NewExecutionError(types.KindOutputStaging, "failed to drain return_files", err)
		}
		returnFiles = append(returnFiles, file)
	}

	metrics.ExecutionsTotal.WithLabelValues(outcomeLabel(result.ExitCode)).Inc()
	metrics.ExecutionWallTimeMs.Observe(float64(result.WallTimeMs))
	metrics.ExecutionTimeMs.Observe(float64(result.TimeUsedMs))
	metrics.ExecutionMemoryKB.Observe(float64(result.MemoryUsedKB))

	return types.ExecutionResult{
		ExitCode:    result.ExitCode,
		TimeUsed:    result.TimeUsedMs,
		MemoryUsed:  result.MemoryUsedKB,
		ReturnFiles: returnFiles,
	}, nil
}

// Cleanup best-effort removes the scratch root. Any error is swallowed —
// it must never be the reason a request fails.
func (w *Worker) Cleanup() {
	if err := w.fs.DeleteRoot(); err != nil && !os.IsNotExist(err) {
		slog.Warn("scratch cleanup failed", "root", w.fs.Root(), "error", err)
	}
}

func outcomeLabel(exitCode int32) string {
	if exitCode == 0 {
		return "success"
	}
	return "nonzero_exit"
}
