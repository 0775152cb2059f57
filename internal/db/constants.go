package db

import "time"

const (
	// timeLayout is fixed width so text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	// callTimeLayout matches SQLite's CURRENT_TIMESTAMP for ai_calls.
	callTimeLayout = "2006-01-02 15:04:05"
)

var timeFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	callTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 +0000 UTC",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
