package utils

import (
	"fmt"
	"time"
)

// Audit logs arrive from several producers; these cover the encodings seen
// in practice. Order matters: the most specific layouts go first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses common audit-log timestamp encodings. Callers treat
// a returned error as "value missing", never as fatal.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time value %q", value)
}

// FormatTimestamp renders a timestamp for response payloads.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
