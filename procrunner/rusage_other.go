//go:build !linux

package procrunner

import "fmt"

// resourceUsageFromSysUsage has no portable implementation outside
// Linux; the sandbox trampoline itself is Linux-only
// (sandbox/trampoline.go), so this only matters for running the rest of
// the module's tests on other build platforms.
func resourceUsageFromSysUsage(_ interface{}) (maxRSSKB int64, cpuTimeMs int64, err error) {
	return 0, 0, fmt.Errorf("rusage collection not supported on this platform")
}
