// Package sysmonitor periodically samples host memory, CPU, and disk
// usage into the metrics package's gauges, on a fixed ticker. /proc and
// golang.org/x/sys/unix's Statfs provide the samples directly, since no
// cross-platform system-stats library was available to build on.
package sysmonitor

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/quayrun/sandexec/internal/metrics"
)

// Interval is the sampling cadence for host resource gauges.
const Interval = 5 * time.Second

// Start launches the sampling loop in a goroutine, scoped to ctx. It
// samples memory, CPU, and disk usage of diskPath every Interval and
// updates metrics.System* gauges. Sampling errors are logged and
// skipped — a single failed read never stops the loop.
func Start(ctx context.Context, diskPath string) {
	go func() {
		ticker := time.NewTicker(Interval)
		defer ticker.Stop()

		var prevIdle, prevTotal uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if used, err := readMemoryUsedBytes(); err != nil {
					slog.Warn("sysmonitor: reading memory failed", "error", err)
				} else {
					metrics.SystemMemoryUsedBytes.Set(float64(used))
				}

				idle, total, err := readCPUTicks()
				if err != nil {
					slog.Warn("sysmonitor: reading cpu failed", "error", err)
				} else if prevTotal != 0 {
					metrics.SystemCPUUsedPercent.Set(cpuPercent(prevIdle, prevTotal, idle, total))
				}
				prevIdle, prevTotal = idle, total

				if used, err := readDiskUsedBytes(diskPath); err != nil {
					slog.Warn("sysmonitor: reading disk usage failed", "error", err)
				} else {
					metrics.SystemDiskUsedBytes.Set(float64(used))
				}
			}
		}
	}()
}

// readMemoryUsedBytes computes MemTotal - MemAvailable from /proc/meminfo,
// matching sysinfo's notion of "used" memory.
func readMemoryUsedBytes() (uint64, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, fmt.Errorf("opening /proc/meminfo: %w", err)
	}
	defer f.Close()

	var total, available uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = kb * 1024
		case "MemAvailable:":
			available = kb * 1024
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if total < available {
		return 0, nil
	}
	return total - available, nil
}

// readCPUTicks returns the idle and total jiffy counts from the
// aggregate "cpu" line of /proc/stat.
func readCPUTicks() (idle, total uint64, err error) {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0, 0, fmt.Errorf("opening /proc/stat: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, 0, fmt.Errorf("empty /proc/stat")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0, 0, fmt.Errorf("unexpected /proc/stat format: %q", scanner.Text())
	}
	for i, field := range fields[1:] {
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		total += v
		if i == 3 { // idle is the 4th field
			idle = v
		}
	}
	return idle, total, nil
}

func cpuPercent(prevIdle, prevTotal, idle, total uint64) float64 {
	deltaTotal := total - prevTotal
	deltaIdle := idle - prevIdle
	if deltaTotal == 0 {
		return 0
	}
	return (1 - float64(deltaIdle)/float64(deltaTotal)) * 100
}

// readDiskUsedBytes reports used bytes on the filesystem backing path.
func readDiskUsedBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bfree * uint64(stat.Bsize)
	return total - free, nil
}
