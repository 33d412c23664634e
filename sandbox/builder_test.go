package sandbox

import "testing"

func TestNewBuilderBindsScratchRoot(t *testing.T) {
	b := NewBuilder("/tmp/scratch-123")
	spec := b.WithRlimits(10, 1024)
	if spec.ScratchRoot != "/tmp/scratch-123" {
		t.Fatalf("got scratch root %q", spec.ScratchRoot)
	}
}

func TestWithRlimitsSetsCPUAndMemory(t *testing.T) {
	b := NewBuilder("/tmp/scratch")
	spec := b.WithRlimits(5, 2048)
	got := map[string]struct{ soft, hard uint64 }{}
	for _, rl := range spec.Rlimits {
		got[rl.Type] = struct{ soft, hard uint64 }{rl.Soft, rl.Hard}
	}
	if got["RLIMIT_CPU"].soft != 5 || got["RLIMIT_CPU"].hard != 5 {
		t.Fatalf("unexpected RLIMIT_CPU: %v", got["RLIMIT_CPU"])
	}
	if got["RLIMIT_AS"].soft != 2048 || got["RLIMIT_STACK"].soft != 2048 {
		t.Fatalf("unexpected memory rlimits: %v", got)
	}
}

func TestWithRlimitsDoesNotMutateTemplate(t *testing.T) {
	b := NewBuilder("/tmp/scratch")
	_ = b.WithRlimits(10, 1024)
	second := b.WithRlimits(20, 2048)
	for _, rl := range second.Rlimits {
		if rl.Type == "RLIMIT_CPU" && rl.Soft != 20 {
			t.Fatalf("expected independent Spec per call, got %v", second.Rlimits)
		}
	}
}

func TestBuilderPreservesFixedPolicy(t *testing.T) {
	b := NewBuilder("/tmp/scratch")
	spec := b.WithRlimits(1, 1)
	if len(spec.FSRules) != len(DefaultFSRules()) {
		t.Fatalf("expected fixed FS rules carried through, got %v", spec.FSRules)
	}
	if len(spec.Banned) != len(BannedSyscalls) {
		t.Fatalf("expected fixed banned syscall list carried through")
	}
}
