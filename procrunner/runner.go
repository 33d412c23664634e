// Package procrunner spawns a single sandboxed program, feeds it stdin,
// collects stdout/stderr, and reports exit status and resource usage. It
// is the one-shot counterpart to the persistent worker loop in
// os_sandbox/worker.go: same goroutine-per-stream shape, but bounded to a
// single Execution rather than a long-lived gob-framed protocol.
package procrunner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/quayrun/sandexec/sandbox"
)

// Result is what a Run produces: exit status plus the resource usage the
// Worker needs to populate types.ExecutionResult.
type Result struct {
	ExitCode     int32
	Stdout       []byte
	Stderr       []byte
	WallTimeMs   int64
	TimeUsedMs   int64
	MemoryUsedKB int64
	TimedOut     bool
}

// Runner launches programs inside the sandbox trampoline. SelfExe is the
// path to the current binary (os.Executable()), re-exec'd as the hidden
// "sandbox-init" subcommand so the child runs already-isolated.
type Runner struct {
	SelfExe string
}

// New returns a Runner that re-execs exePath for every sandboxed launch.
func New(exePath string) *Runner {
	return &Runner{SelfExe: exePath}
}

// Run spawns program under spec, feeds it stdin, and waits up to
// wallTimeLimit. When wallTimeLimit expires, Run kills the child process
// (not its process group), waits for it to be reaped, and reports
// TimedOut with the killed process's exit status. Cancelling ctx neither
// kills the child nor shortens the wait — see DESIGN.md.
func (r *Runner) Run(ctx context.Context, spec sandbox.Spec, program string, args []string, env []string, stdin []byte, wallTimeLimit time.Duration) (Result, error) {
	specJSON, err := marshalSpec(spec)
	if err != nil {
		return Result{}, fmt.Errorf("marshaling sandbox spec: %w", err)
	}

	cmdArgs := append([]string{"sandbox-init", "--spec-fd=3", "--program", program}, args...)
	cmd := exec.Command(r.SelfExe, cmdArgs...)
	cmd.Env = env
	configureSysProcAttr(cmd, spec)

	specReader, specWriter, err := os.Pipe()
	if err != nil {
		return Result{}, fmt.Errorf("creating spec pipe: %w", err)
	}
	cmd.ExtraFiles = []*os.File{specReader}

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		specReader.Close()
		specWriter.Close()
		return Result{}, fmt.Errorf("creating stdin pipe: %w", err)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	var bufMu sync.Mutex
	cmd.Stdout = lockedWriter{&bufMu, &stdoutBuf}
	cmd.Stderr = lockedWriter{&bufMu, &stderrBuf}

	if err := cmd.Start(); err != nil {
		specReader.Close()
		specWriter.Close()
		return Result{}, fmt.Errorf("starting sandboxed process: %w", err)
	}
	specReader.Close()

	go func() {
		defer specWriter.Close()
		specWriter.Write(specJSON)
	}()

	go func() {
		defer stdinPipe.Close()
		if len(stdin) > 0 {
			if _, err := io.Copy(stdinPipe, bytes.NewReader(stdin)); err != nil {
				// The child may have exited or closed stdin early; not fatal.
				slog.Warn("writing stdin to sandboxed process failed", "error", err)
			}
		}
	}()

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wallTimeLimit)
	defer cancel()

	waitDone := make(chan error, 1)
	start := time.Now()
	go func() { waitDone <- cmd.Wait() }()

	var waitErr error
	var timedOut bool
	select {
	case waitErr = <-waitDone:
	case <-runCtx.Done():
		timedOut = true
		_ = cmd.Process.Kill()
		waitErr = <-waitDone
	}
	elapsed := time.Since(start)

	exitCode := int32(0)
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		exitCode = int32(exitErr.ExitCode())
	} else if waitErr != nil && !timedOut {
		return Result{}, fmt.Errorf("waiting for sandboxed process: %w", waitErr)
	}

	memKB, cpuTimeMs, rusageErr := readResourceUsage(cmd)
	if rusageErr != nil {
		memKB = 0
		cpuTimeMs = 0
	}

	return Result{
		ExitCode:     exitCode,
		Stdout:       stdoutBuf.Bytes(),
		Stderr:       stderrBuf.Bytes(),
		WallTimeMs:   elapsed.Milliseconds(),
		TimeUsedMs:   cpuTimeMs,
		MemoryUsedKB: memKB,
		TimedOut:     timedOut,
	}, nil
}

type lockedWriter struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func marshalSpec(spec sandbox.Spec) ([]byte, error) {
	return json.Marshal(spec)
}

// readResourceUsage reads the child's peak resident set size and total
// user+system CPU time from its exit rusage when the platform exposes
// one (populated by cmd.ProcessState). Unsupported platforms or a nil
// ProcessState yield (0, 0, error) so callers substitute zero and log a
// warning rather than fail the execution.
func readResourceUsage(cmd *exec.Cmd) (maxRSSKB int64, cpuTimeMs int64, err error) {
	if cmd.ProcessState == nil {
		return 0, 0, fmt.Errorf("no process state available")
	}
	return resourceUsageFromSysUsage(cmd.ProcessState.SysUsage())
}
