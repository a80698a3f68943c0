package downloader

import (
	"strconv"
	"strings"
)

// ParsePercent extracts a download percentage from a backend output line.
// Both tools print lines containing a "NN.N%" token while downloading
// (e.g. "Vid 1080p ... 45.20% 2.50MBps"). Returns ok=false when the line
// carries no percentage.
func ParsePercent(line string) (float64, bool) {
	idx := strings.Index(line, "%")
	if idx <= 0 {
		return 0, false
	}
	start := idx
	for start > 0 {
		c := line[start-1]
		if (c >= '0' && c <= '9') || c == '.' {
			start--
			continue
		}
		break
	}
	if start == idx {
		return 0, false
	}
	pct, err := strconv.ParseFloat(line[start:idx], 64)
	if err != nil || pct < 0 || pct > 100 {
		return 0, false
	}
	return pct, true
}
