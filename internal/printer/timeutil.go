package printer

import (
	"fmt"
	"time"
)

// timeAgoUnits are ordered smallest first; the first unit whose limit holds
// the difference renders it. Anything past a day just counts days.
var timeAgoUnits = []struct {
	limit time.Duration
	size  time.Duration
	name  string
}{
	{limit: time.Minute, size: time.Second, name: "second"},
	{limit: time.Hour, size: time.Minute, name: "minute"},
	{limit: 24 * time.Hour, size: time.Hour, name: "hour"},
}

// TimeAgo returns a human-readable relative time string in UTC.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "3 hours ago (UTC)".
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future (UTC)"
	}

	for _, u := range timeAgoUnits {
		if diff < u.limit {
			return timeAgoString(int(diff/u.size), u.name)
		}
	}
	return timeAgoString(int(diff/(24*time.Hour)), "day")
}

func timeAgoString(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago (UTC)", unit)
	}
	return fmt.Sprintf("%d %ss ago (UTC)", n, unit)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatDuration renders a duration with sub-second precision trimmed.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
