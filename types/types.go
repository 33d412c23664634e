// Package types defines the tagged-variant wire schemas shared by the
// sandexec core: File, FilePath, Execution, and ExecutionResult.
package types

import "fmt"

// FileKind discriminates the variants of File.
type FileKind string

const (
	FileLocal  FileKind = "local"
	FileRemote FileKind = "remote"
)

// File describes one initial input staged into a Worker's scratch root
// before any execution runs.
type File struct {
	Kind FileKind `json:"type"`

	// Local
	Name    string `json:"name,omitempty"`
	Content []byte `json:"content,omitempty"`

	// Remote
	ID string `json:"id,omitempty"`
}

// FilePathKind discriminates the variants of FilePath. Validity is
// position-dependent (source vs. sink) and enforced by filerouter, not
// here — see filerouter's doc comments for the source/sink matrices.
type FilePathKind string

const (
	PathLocal  FilePathKind = "local"
	PathData   FilePathKind = "data"
	PathRemote FilePathKind = "remote"
	PathStdin  FilePathKind = "stdin"
	PathStdout FilePathKind = "stdout"
	PathStderr FilePathKind = "stderr"
	PathTmp    FilePathKind = "tmp"
)

// FilePath is a directive endpoint: one end of an ExecutionTransfer, or a
// return_files entry.
type FilePath struct {
	Kind FilePathKind `json:"type"`

	// Local
	Name       string `json:"name,omitempty"`
	Executable bool   `json:"executable,omitempty"`

	// Data
	Content []byte `json:"content,omitempty"`

	// Remote
	ID string `json:"id,omitempty"`

	// Stdout / Stderr
	MaxSize *int64 `json:"max_size,omitempty"`

	// Tmp
	TmpID uint64 `json:"id_tmp,omitempty"`
}

func (p FilePath) String() string {
	switch p.Kind {
	case PathLocal:
		return fmt.Sprintf("local(%s)", p.Name)
	case PathRemote:
		return fmt.Sprintf("remote(%s)", p.ID)
	case PathTmp:
		return fmt.Sprintf("tmp(%d)", p.TmpID)
	default:
		return string(p.Kind)
	}
}

// ExecutionTransfer is a directed copy_in/copy_out edge.
type ExecutionTransfer struct {
	From FilePath `json:"from"`
	To   FilePath `json:"to"`
}

// Execution is the unit of scheduling: one program run under limits, with
// its own file-routing directives.
type Execution struct {
	Program        string              `json:"program"`
	Args           []string            `json:"args"`
	TimeLimit      uint64              `json:"time_limit"`       // CPU seconds
	WallTimeLimit  uint64              `json:"wall_time_limit"`  // seconds
	MemoryLimit    uint64              `json:"memory_limit"`     // bytes
	CopyIn         []ExecutionTransfer `json:"copy_in"`
	CopyOut        []ExecutionTransfer `json:"copy_out"`
	ReturnFiles    []FilePath          `json:"return_files"`
	DieOnError     bool                `json:"die_on_error"`
	Autofix        *bool               `json:"autofix,omitempty"`
}

// AutofixEnabled reports whether stdout should be run through autofix
// (default true — unset means enabled).
func (e *Execution) AutofixEnabled() bool {
	return e.Autofix == nil || *e.Autofix
}

// ExecutionFile is one returned file: a name and its content bytes.
type ExecutionFile struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

// ExecutionResult is the normalized outcome of one Execution.
type ExecutionResult struct {
	ExitCode     int32           `json:"exit_code"`
	TimeUsed     int64           `json:"time_used"`    // milliseconds
	MemoryUsed   int64           `json:"memory_used"`  // kilobytes
	ReturnFiles  []ExecutionFile `json:"return_files"`
}

// ExecutionRequest is the top-level payload: a batch of executions plus
// the files to preload into scratch before the first one runs.
type ExecutionRequest struct {
	Executions []Execution `json:"executions"`
	Files      []File      `json:"files"`
}
