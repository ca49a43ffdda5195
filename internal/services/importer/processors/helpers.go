package processors

import (
	"strings"
	"time"
)

func firstNonEmpty(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// parseDateStrict accepts the day-first layouts the registry export uses plus
// ISO dates. Unknown layouts yield nil, never an error.
func parseDateStrict(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	layouts := []string{
		"02/01/2006",
		"2006-01-02",
		"02-01-2006",
		"02.01.2006",
		"2006/01/02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"02/01/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			tt := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &tt
		}
	}
	return nil
}
