package model

import (
	"strings"
	"time"
)

// ISOMillisLayout is the fixed UTC timestamp format used by the REST backend.
const ISOMillisLayout = "2006-01-02T15:04:05.000Z"

// ParseISOMillis parses the fixed UTC layout into epoch millis.
// Unparseable input yields now.
func ParseISOMillis(s string, now time.Time) int64 {
	t, err := time.ParseInLocation(ISOMillisLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return now.UnixMilli()
	}
	return t.UnixMilli()
}

// ParseFlexibleDate accepts an offset-aware ISO-8601 timestamp and falls back
// to ParseISOMillis.
func ParseFlexibleDate(s string, now time.Time) int64 {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UnixMilli()
	}
	return ParseISOMillis(s, now)
}
