package book

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// readDatePattern matches "2026. 1. 17. 3:34".
var readDatePattern = regexp.MustCompile(`(\d+)\.\s*(\d+)\.\s*(\d+)\.\s*(\d+):(\d+)`)

// Epoch is the value unparseable read dates resolve to.
var Epoch = time.Unix(0, 0).UTC()

// ParseReadDate parses a read date of the form "YYYY. M. D. H:mm".
// Empty or malformed input yields Epoch. Out-of-range fields roll over the
// same way time.Date normalizes them.
func ParseReadDate(s string) time.Time {
	if s == "" {
		return Epoch
	}
	m := readDatePattern.FindStringSubmatch(s)
	if m == nil {
		return Epoch
	}

	var fields [5]int
	for i := range fields {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Epoch
		}
		fields[i] = n
	}

	return time.Date(fields[0], time.Month(fields[1]), fields[2], fields[3], fields[4], 0, 0, time.UTC)
}

// FormatReadDate renders t in the read date pattern.
func FormatReadDate(t time.Time) string {
	return fmt.Sprintf("%d. %d. %d. %d:%02d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// ReadDateFromInput accepts either a calendar date ("2024-03-09"), which is
// stamped at noon, or a value already in the read date pattern.
func ReadDateFromInput(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if readDatePattern.MatchString(s) {
		return s, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", fmt.Errorf("read date %q: %w", s, err)
	}
	return FormatReadDate(time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)), nil
}
