//go:build linux

package procrunner

import (
	"fmt"
	"syscall"
)

// resourceUsageFromSysUsage extracts peak RSS and total user+system CPU
// time from a *syscall.Rusage. On Linux, Rusage.Maxrss is already
// reported in kilobytes; Utime and Stime are summed and converted to
// milliseconds.
func resourceUsageFromSysUsage(usage interface{}) (maxRSSKB int64, cpuTimeMs int64, err error) {
	ru, ok := usage.(*syscall.Rusage)
	if !ok || ru == nil {
		return 0, 0, fmt.Errorf("no rusage available")
	}
	cpuTimeMs = (int64(ru.Utime.Sec)+int64(ru.Stime.Sec))*1000 + (int64(ru.Utime.Usec)+int64(ru.Stime.Usec))/1000
	return ru.Maxrss, cpuTimeMs, nil
}
