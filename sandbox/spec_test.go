package sandbox

import "testing"

func TestDefaultFSRulesIncludesScratchReadWrite(t *testing.T) {
	rules := DefaultFSRules()
	var found bool
	for _, r := range rules {
		if r.Path != GuestScratchPath {
			continue
		}
		found = true
		if r.Access&FSRead == 0 || r.Access&FSWrite == 0 || r.Access&FSExec == 0 {
			t.Fatalf("expected rwx on %s, got %v", GuestScratchPath, r.Access)
		}
	}
	if !found {
		t.Fatalf("expected a rule for %s", GuestScratchPath)
	}
}

func TestDefaultFSRulesSystemDirsAreReadExecOnly(t *testing.T) {
	for _, path := range []string{"/bin", "/lib", "/usr"} {
		var rule *FSRule
		for i, r := range DefaultFSRules() {
			if r.Path == path {
				rule = &DefaultFSRules()[i]
			}
		}
		if rule == nil {
			t.Fatalf("expected a rule for %s", path)
		}
		if rule.Access&FSWrite != 0 {
			t.Fatalf("%s should not be writable, got %v", path, rule.Access)
		}
		if rule.Access&FSRead == 0 || rule.Access&FSExec == 0 {
			t.Fatalf("%s should be read+exec, got %v", path, rule.Access)
		}
	}
}

func TestDefaultNamespacesExcludesPID(t *testing.T) {
	for _, ns := range DefaultNamespaces() {
		if ns.Type == "pid" {
			t.Fatalf("pid namespace must not be unshared, found: %v", DefaultNamespaces())
		}
	}
	if len(DefaultNamespaces()) != 4 {
		t.Fatalf("expected 4 namespaces, got %d", len(DefaultNamespaces()))
	}
}
