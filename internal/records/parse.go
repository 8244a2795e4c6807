package records

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order. The ticketing system's exports have
// shipped every one of these at some point.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an export timestamp. All values are interpreted as
// UTC; the exports carry no zone information.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseReopenCount parses a reopen-count cell. An empty cell is absent
// without being an anomaly; a non-numeric or negative cell is absent AND
// anomalous. The value is never defaulted to zero.
func ParseReopenCount(s string) (val OptionalInt, anomalous bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OptionalInt{}, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return OptionalInt{}, true
	}
	return SomeInt(n), false
}

// parseFlag interprets the export's boolean spellings ("true", "Yes", "1").
func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}
