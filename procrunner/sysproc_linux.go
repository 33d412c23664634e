//go:build linux

package procrunner

import (
	"os/exec"
	"syscall"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"

	"github.com/quayrun/sandexec/sandbox"
)

// configureSysProcAttr sets the Cloneflags the sandbox-init trampoline
// needs to already be running inside before its first instruction: the
// namespace set spec.Namespaces names, translated from OCI namespace
// types to their CLONE_NEW* flags. PID is never among them (spec.Spec
// never carries it — see sandbox.DefaultNamespaces).
func configureSysProcAttr(cmd *exec.Cmd, spec sandbox.Spec) {
	var flags uintptr
	for _, ns := range spec.Namespaces {
		switch ns.Type {
		case specs.CgroupNamespace:
			flags |= unix.CLONE_NEWCGROUP
		case specs.IPCNamespace:
			flags |= unix.CLONE_NEWIPC
		case specs.UTSNamespace:
			flags |= unix.CLONE_NEWUTS
		case specs.NetworkNamespace:
			flags |= unix.CLONE_NEWNET
		case specs.MountNamespace:
			flags |= unix.CLONE_NEWNS
		}
	}
	// The scratch bind-mount in sandbox.Init always needs its own mount
	// namespace regardless of what DefaultNamespaces lists.
	flags |= unix.CLONE_NEWNS

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: flags,
	}
}
