// Package timestamp detects a UTC instant embedded anywhere in a log line.
package timestamp

import (
	"regexp"
	"strconv"
	"time"
)

var (
	iso8601Re = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?`)
	commonRe  = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?`)
	syslogRe  = regexp.MustCompile(`(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}`)

	tzOffsetRe = regexp.MustCompile(`([+-]\d{2})(\d{2})$`)
)

// Parse probes, in order, ISO-8601/RFC3339, a common "YYYY-MM-DD HH:MM:SS"
// form, and syslog's "Mon DD HH:MM:SS". The first family whose regex matches
// anywhere in text wins; there is no anchoring. Returns ok=false if none
// match or the matched text fails to parse.
func Parse(text string) (time.Time, bool) {
	if m := iso8601Re.FindString(text); m != "" {
		if t, ok := tryISO8601(m); ok {
			return t, true
		}
	}
	if m := commonRe.FindString(text); m != "" {
		if t, ok := tryCommonDatetime(m); ok {
			return t, true
		}
	}
	if m := syslogRe.FindString(text); m != "" {
		if t, ok := trySyslog(m); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func tryISO8601(s string) (time.Time, bool) {
	s = normalizeOffset(s)
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalizeOffset inserts the colon into a bare +HHMM/-HHMM suffix so
// time.Parse's colon-requiring layouts accept it.
func normalizeOffset(s string) string {
	if m := tzOffsetRe.FindStringSubmatchIndex(s); m != nil {
		sign := s[m[2]:m[3]]
		mins := s[m[4]:m[5]]
		return s[:m[2]] + sign + ":" + mins
	}
	return s
}

func tryCommonDatetime(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func trySyslog(s string) (time.Time, bool) {
	year := strconv.Itoa(time.Now().Year())
	if t, err := time.Parse("Jan 2 15:04:05 2006", s+" "+year); err == nil {
		return t.UTC(), true
	}
	// Some syslog timestamps pad the day with two spaces ("Jan  2").
	if t, err := time.Parse("Jan  2 15:04:05 2006", s+" "+year); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
