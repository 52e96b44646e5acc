package utils

import (
	// Go Internal Packages
	"strings"
	"time"
)

// TimestampLayout is how completion times are stored on records.
const TimestampLayout = "2006-01-02 15:04:05"

var providerLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// ReformatTimestamp reparses a provider timestamp into TimestampLayout.
// Unparseable input comes back trimmed but otherwise untouched.
func ReformatTimestamp(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range providerLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(TimestampLayout)
		}
	}
	return value
}

// FormatTimestamp formats t using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
