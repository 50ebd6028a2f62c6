package rules

import (
	"time"

	"github.com/lazylog/lazylog/internal/logline"
)

// GapSeparatorIndices returns the set of log indices preceded by a time gap
// of at least threshold, skipping lines whose timestamp was inherited (they
// carry no information about a real gap) and, when skipRollover is true,
// gaps that are already flagged by DateRolloverSeparatorIndices.
func GapSeparatorIndices(lines []logline.Line, threshold time.Duration, skipRollover bool) map[int]bool {
	result := make(map[int]bool)
	var rollover map[int]bool
	if skipRollover {
		rollover = DateRolloverSeparatorIndices(lines)
	}

	var prevTS time.Time
	havePrev := false
	for _, line := range lines {
		if !line.HasTimestamp || line.TimestampInherited {
			continue
		}
		if havePrev && line.Timestamp.Sub(prevTS) >= threshold {
			if !(skipRollover && rollover[line.Index]) {
				result[line.Index] = true
			}
		}
		prevTS = line.Timestamp
		havePrev = true
	}
	return result
}

// DateRolloverSeparatorIndices returns the set of log indices whose calendar
// date differs from the previous timestamped line's date.
func DateRolloverSeparatorIndices(lines []logline.Line) map[int]bool {
	result := make(map[int]bool)
	var prevY, prevD int
	var prevM time.Month
	havePrev := false
	for _, line := range lines {
		if !line.HasTimestamp || line.TimestampInherited {
			continue
		}
		y, m, d := line.Timestamp.Date()
		if havePrev && (y != prevY || m != prevM || d != prevD) {
			result[line.Index] = true
		}
		prevY, prevM, prevD = y, m, d
		havePrev = true
	}
	return result
}
