package sqlite

import (
	"fmt"
	"time"
)

// legacyTimeLayouts covers timestamps written by earlier versions of the
// board, which stored naive ISO-8601 values without a zone.
var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// FormatTimeForDB formats a time.Time value as an RFC3339 UTC string for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimeFromDB parses a timestamp from the database. RFC3339 is tried
// first; zone-less legacy values are read as UTC.
func ParseTimeFromDB(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse time format: %q", s)
}
