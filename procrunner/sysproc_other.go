//go:build !linux

package procrunner

import (
	"os/exec"

	"github.com/quayrun/sandexec/sandbox"
)

// configureSysProcAttr is a no-op outside Linux — the sandbox trampoline
// itself is Linux-only (sandbox/trampoline.go).
func configureSysProcAttr(_ *exec.Cmd, _ sandbox.Spec) {}
