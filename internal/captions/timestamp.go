package captions

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Hours are optional on input, as WebVTT allows MM:SS.mmm.
var timestampPattern = regexp.MustCompile(`^(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})$`)

// ParseTimestamp converts an HH:MM:SS.mmm or MM:SS.mmm timestamp into a
// duration.
func ParseTimestamp(value string) (time.Duration, error) {
	match := timestampPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	var hours int
	if match[1] != "" {
		var err error
		if hours, err = strconv.Atoi(match[1]); err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", value, err)
		}
	}
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])
	millis, _ := strconv.Atoi(match[4])
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("invalid timestamp %q: field out of range", value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

// FormatTimestamp renders a duration as HH:MM:SS.mmm, truncated to the
// millisecond. Negative durations render as zero.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	seconds := ms / 1000
	ms -= seconds * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, ms)
}
