package sandbox

import (
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Builder constructs and re-parameterizes a Container template for one
// Worker. The template (namespaces, Landlock rules, seccomp denylist) is
// built once in NewBuilder; rlimits are re-applied per execution via
// WithRlimits, since each execution within a batch can carry its own
// time and memory limits.
type Builder struct {
	base Spec
}

// NewBuilder returns a Builder whose template binds scratchRoot at
// GuestScratchPath with the fixed Landlock and seccomp policy. The PID
// namespace is intentionally not unshared — see DESIGN.md for why that
// choice is preserved rather than fixed.
func NewBuilder(scratchRoot string) *Builder {
	return &Builder{
		base: Spec{
			ScratchRoot: scratchRoot,
			Namespaces:  DefaultNamespaces(),
			FSRules:     DefaultFSRules(),
			Banned:      append([]string{}, BannedSyscalls...),
			Arches:      append([]string{}, SeccompArches...),
		},
	}
}

// WithRlimits returns a Spec that is the template plus RLIMIT_CPU =
// timeLimit (seconds, soft=hard), RLIMIT_AS = memoryLimit (bytes,
// soft=hard), RLIMIT_STACK = memoryLimit.
func (b *Builder) WithRlimits(timeLimitSeconds, memoryLimitBytes uint64) Spec {
	spec := b.base
	spec.Rlimits = []specs.POSIXRlimit{
		{Type: "RLIMIT_CPU", Soft: timeLimitSeconds, Hard: timeLimitSeconds},
		{Type: "RLIMIT_AS", Soft: memoryLimitBytes, Hard: memoryLimitBytes},
		{Type: "RLIMIT_STACK", Soft: memoryLimitBytes, Hard: memoryLimitBytes},
	}
	return spec
}
