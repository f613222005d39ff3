package debug

// Debug goroutine metrics logger. Started only when config.Debug is true.
// Emits goroutine count (runtime metrics) and stack usage at a fixed interval.

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

// StartGoroutineLogger launches a ticker that logs goroutine count and stack memory.
// It is lightweight; disable by running without the debug flag.
func StartGoroutineLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		return
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for range t.C {
			metrics.Read(samples)
			goroutines := samples[0].Value.Uint64()
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info("goroutine-stacks",
				slog.Uint64("goroutines", goroutines),
				slog.String("stack_inuse", humanize.IBytes(ms.StackInuse)),
				slog.String("stack_sys", humanize.IBytes(ms.StackSys)),
				slog.String("heap_alloc", humanize.IBytes(ms.HeapAlloc)),
			)
		}
	}()
}

// logMemStats emits one memstats record; rss is 0 when the platform query failed.
func logMemStats(logger *slog.Logger, rss uint64) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	logger.Info("memstats",
		slog.Int("goroutines", runtime.NumGoroutine()),
		slog.String("heap_alloc", humanize.IBytes(ms.HeapAlloc)),
		slog.String("heap_inuse", humanize.IBytes(ms.HeapInuse)),
		slog.String("heap_idle", humanize.IBytes(ms.HeapIdle)),
		slog.String("heap_sys", humanize.IBytes(ms.HeapSys)),
		slog.String("next_gc", humanize.IBytes(ms.NextGC)),
		slog.String("rss", humanize.IBytes(rss)),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
	)
}
