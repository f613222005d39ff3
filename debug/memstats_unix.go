//go:build unix

package debug

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// StartMemLogger logs peak RSS from getrusage with Go heap stats every interval.
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
			rss, err := maxRSS()
			if err != nil && !rssErrLogged {
				logger.Warn("memlog: getrusage failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logMemStats(logger, rss)
		}
	}()
}

func maxRSS() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	rss := uint64(ru.Maxrss)
	// darwin reports bytes, the others kilobytes
	if runtime.GOOS != "darwin" && runtime.GOOS != "ios" {
		rss *= 1024
	}
	return rss, nil
}
