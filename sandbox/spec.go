// Package sandbox builds the Container template: kernel namespaces, a
// read-only-by-Landlock rootfs with the scratch root bind-mounted at
// /box, a default-Allow seccomp filter that denies a fixed syscall set,
// and per-execution POSIX rlimits.
//
// The kernel isolation primitives themselves are a library contract, not
// reimplemented here: namespace unsharing rides on
// exec.Cmd's SysProcAttr, Landlock ruleset construction is
// github.com/landlock-lsm/go-landlock, and the seccomp filter is built
// with github.com/seccomp/libseccomp-golang. Both are applied by a
// re-exec'd trampoline (cmd/sandexec's hidden "sandbox-init" subcommand)
// that runs inside the new mount namespace before execve-ing the real
// target program.
package sandbox

import (
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// BannedSyscalls is the denylist seccomp installs Errno(SIGSYS) rules
// for, on top of a default-Allow action. The goal is killing network
// egress and container-escape primitives while keeping sandboxed
// toolchains (compilers, interpreters) functional.
var BannedSyscalls = []string{
	"mount", "umount", "poweroff", "reboot",
	"socket", "bind", "connect", "listen", "sendto", "recvfrom",
}

// SeccompArches lists the architectures the filter is registered for, so
// 32-bit entrypoints on an x86_64 host can't bypass the 64-bit filter.
var SeccompArches = []string{"x86_64", "x86", "x32"}

// GuestScratchPath is the fixed guest-side mountpoint for a Worker's
// scratch root.
const GuestScratchPath = "/box"

// FSAccess is a bitmask of Landlock filesystem permissions, mirroring
// the rwx vocabulary used for the Landlock ruleset.
type FSAccess uint8

const (
	FSRead FSAccess = 1 << iota
	FSWrite
	FSExec
)

// FSRule is one Landlock ruleset entry: a path and the access bits
// granted under it.
type FSRule struct {
	Path   string
	Access FSAccess
}

// Spec is the fully-resolved, JSON-serializable sandbox description
// passed from the parent process to the sandbox-init trampoline. It
// intentionally carries no secrets — only paths, syscall names, and
// resource numbers.
type Spec struct {
	ScratchRoot string               `json:"scratch_root"`
	Namespaces  []specs.LinuxNamespace `json:"namespaces"`
	FSRules     []FSRule             `json:"fs_rules"`
	Banned      []string             `json:"banned_syscalls"`
	Arches      []string             `json:"arches"`
	Rlimits     []specs.POSIXRlimit  `json:"rlimits"`
}

// DefaultFSRules returns the fixed Landlock ruleset: read+exec on /bin,
// /lib, /usr; read+write+exec on the guest scratch mountpoint.
func DefaultFSRules() []FSRule {
	return []FSRule{
		{Path: "/bin", Access: FSRead | FSExec},
		{Path: "/lib", Access: FSRead | FSExec},
		{Path: "/usr", Access: FSRead | FSExec},
		{Path: GuestScratchPath, Access: FSRead | FSWrite | FSExec},
	}
}

// DefaultNamespaces returns the set of namespaces the sandbox unshares.
// The PID namespace is deliberately absent — see Builder's doc comment
// and DESIGN.md for why that choice is preserved rather than fixed.
func DefaultNamespaces() []specs.LinuxNamespace {
	return []specs.LinuxNamespace{
		{Type: specs.CgroupNamespace},
		{Type: specs.IPCNamespace},
		{Type: specs.UTSNamespace},
		{Type: specs.NetworkNamespace},
	}
}
