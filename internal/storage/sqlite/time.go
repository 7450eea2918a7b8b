package sqlite

import (
	"fmt"
	"time"
)

// sqliteTimeLayouts are the formats ncruces/go-sqlite3 may hand back for a
// DATETIME column read as a plain string (e.g. out of an aggregate).
var sqliteTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseSQLiteTime(s string) (time.Time, error) {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing sqlite time %q", s)
}
