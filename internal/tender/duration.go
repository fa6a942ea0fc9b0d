// internal/tender/duration.go
package tender

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// defaultDurationDays is used when the owner's duration text is wholly
// unparseable. The tender still gets a deadline instead of an error.
const defaultDurationDays = 30

// Unit keywords, matched case-insensitively anywhere after the leading
// integer. Owners type mixed Indonesian/English ("2 minggu", "1 Month").
var (
	weekKeywords  = []string{"minggu", "week", "pekan", "wk"}
	monthKeywords = []string{"bulan", "month", "bln"}
)

// ComputeDeadline turns a free-form tender duration phrase and a start
// instant into an absolute deadline. Grammar: optional leading integer,
// optional unit keyword among week/month/day synonyms. An integer with
// unrecognized unit text means days; no parseable integer at all means the
// 30-day default. It never fails.
func ComputeDeadline(start time.Time, durationText string) *time.Time {
	n, rest, ok := leadingInt(durationText)
	if !ok || n <= 0 {
		d := start.AddDate(0, 0, defaultDurationDays)
		return &d
	}

	rest = strings.ToLower(rest)
	var deadline time.Time
	switch {
	case containsAny(rest, weekKeywords):
		deadline = start.AddDate(0, 0, 7*n)
	case containsAny(rest, monthKeywords):
		deadline = start.AddDate(0, n, 0)
	default:
		// "hari", "day", bare number, or anything unrecognized: days.
		deadline = start.AddDate(0, 0, n)
	}
	return &deadline
}

// HoursUntil returns the hours remaining before the deadline, negative when
// it already passed. A nil deadline propagates as nil, which callers must
// treat as "unknown", never "past".
func HoursUntil(deadline *time.Time, now time.Time) *float64 {
	if deadline == nil {
		return nil
	}
	h := deadline.Sub(now).Hours()
	return &h
}

// leadingInt scans the first run of digits in the text, skipping leading
// space, and returns it with the remainder of the string.
func leadingInt(s string) (int, string, bool) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
