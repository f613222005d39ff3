//go:build windows

package debug

// Memory/RSS periodic logger enabled when config.Debug is true.
// Logs working set (RSS) along with Go heap stats so decoded frame buffers held by the
// frame cache can be told apart from Tk's native allocations.

import (
	"log/slog"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// processMemoryCounters matches PROCESS_MEMORY_COUNTERS from psapi.
type processMemoryCounters struct {
	cb                         uint32
	PageFaultCount             uint32
	PeakWorkingSetSize         uintptr
	WorkingSetSize             uintptr
	QuotaPeakPagedPoolUsage    uintptr
	QuotaPagedPoolUsage        uintptr
	QuotaPeakNonPagedPoolUsage uintptr
	QuotaNonPagedPoolUsage     uintptr
	PagefileUsage              uintptr
	PeakPagefileUsage          uintptr
}

var (
	modPsapi                 = windows.NewLazySystemDLL("psapi.dll")
	procGetProcessMemoryInfo = modPsapi.NewProc("GetProcessMemoryInfo")
)

// StartMemLogger launches a goroutine that logs memory stats every interval.
// It is best-effort; failures to query RSS are logged once and suppressed.
func StartMemLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for range ticker.C {
			rss := uint64(0)
			pmc := processMemoryCounters{cb: uint32(unsafe.Sizeof(processMemoryCounters{}))}
			r1, _, err := procGetProcessMemoryInfo.Call(uintptr(windows.CurrentProcess()), uintptr(unsafe.Pointer(&pmc)), uintptr(pmc.cb))
			if r1 != 0 {
				rss = uint64(pmc.WorkingSetSize)
			} else if !rssErrLogged {
				logger.Warn("memlog: GetProcessMemoryInfo call failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logMemStats(logger, rss)
		}
	}()
}
