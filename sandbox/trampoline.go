//go:build linux

package sandbox

import (
	"fmt"

	seccomp "github.com/seccomp/libseccomp-golang"
	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"

	"github.com/landlock-lsm/go-landlock/landlock"
)

// Init runs inside the re-exec'd sandbox-init trampoline, already in its
// own mount/ipc/uts/net/cgroup namespace (set up by the parent via
// exec.Cmd's Cloneflags before this process's first instruction ran). It
// bind-mounts the scratch root, installs Landlock and seccomp, applies
// rlimits, and execve's into program — it never returns on success.
func Init(spec Spec, program string, args, env []string) error {
	if err := bindScratch(spec.ScratchRoot); err != nil {
		return fmt.Errorf("binding scratch root: %w", err)
	}
	if err := restrictLandlock(spec.FSRules); err != nil {
		return fmt.Errorf("installing landlock ruleset: %w", err)
	}
	if err := installSeccomp(spec.Banned, spec.Arches); err != nil {
		return fmt.Errorf("installing seccomp filter: %w", err)
	}
	if err := applyRlimits(spec.Rlimits); err != nil {
		return fmt.Errorf("applying rlimits: %w", err)
	}

	argv := append([]string{program}, args...)
	if err := unix.Exec(program, argv, env); err != nil {
		return fmt.Errorf("execve %s: %w", program, err)
	}
	return nil // unreachable
}

func bindScratch(root string) error {
	if err := unix.Mount(root, GuestScratchPath, "", unix.MS_BIND, ""); err != nil {
		return fmt.Errorf("bind-mounting %s at %s: %w", root, GuestScratchPath, err)
	}
	return nil
}

func restrictLandlock(rules []FSRule) error {
	var ro, rw []string
	for _, r := range rules {
		switch {
		case r.Access&FSWrite != 0:
			rw = append(rw, r.Path)
		default:
			ro = append(ro, r.Path)
		}
	}
	cfg := landlock.V5.BestEffort()
	return cfg.RestrictPaths(
		landlock.RODirs(ro...),
		landlock.RWDirs(rw...),
	)
}

func installSeccomp(banned, arches []string) error {
	filter, err := seccomp.NewFilter(seccomp.ActAllow)
	if err != nil {
		return fmt.Errorf("creating seccomp filter: %w", err)
	}
	defer filter.Release()

	for _, arch := range arches {
		scmpArch, err := seccomp.GetArchFromString(arch)
		if err != nil {
			return fmt.Errorf("resolving arch %s: %w", arch, err)
		}
		if err := filter.AddArch(scmpArch); err != nil {
			return fmt.Errorf("adding arch %s: %w", arch, err)
		}
	}

	errnoSigsys := seccomp.ActErrno.SetReturnCode(int16(unix.SIGSYS))
	for _, name := range banned {
		call, err := seccomp.GetSyscallFromName(name)
		if err != nil {
			// Syscall not defined for this libseccomp/kernel combination —
			// skip rather than fail sandbox construction over it.
			continue
		}
		if err := filter.AddRule(call, errnoSigsys); err != nil {
			return fmt.Errorf("adding rule for %s: %w", name, err)
		}
	}

	if err := filter.Load(); err != nil {
		return fmt.Errorf("loading seccomp filter: %w", err)
	}
	return nil
}

func applyRlimits(rlimits []specs.POSIXRlimit) error {
	for _, rl := range rlimits {
		resource, err := rlimitNameToResource(rl.Type)
		if err != nil {
			return err
		}
		lim := unix.Rlimit{Cur: rl.Soft, Max: rl.Hard}
		if err := unix.Setrlimit(resource, &lim); err != nil {
			return fmt.Errorf("setrlimit %s: %w", rl.Type, err)
		}
	}
	return nil
}

// rlimitNameToResource maps an OCI rlimit type name to its syscall
// resource constant. Only the three rlimits sandexec actually sets are
// covered; an unknown name is a configuration bug, not a runtime one.
func rlimitNameToResource(name string) (int, error) {
	switch name {
	case "RLIMIT_CPU":
		return unix.RLIMIT_CPU, nil
	case "RLIMIT_AS":
		return unix.RLIMIT_AS, nil
	case "RLIMIT_STACK":
		return unix.RLIMIT_STACK, nil
	default:
		return 0, fmt.Errorf("unsupported rlimit %s", name)
	}
}
