package project

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatDuration renders seconds as HH:MM:SS. The hour field grows past two
// digits when needed. Negative input renders as zero.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseSeconds reads a user-entered time, either a plain number of seconds
// or H:MM:SS.
func ParseSeconds(input string) (int64, error) {
	in := strings.TrimSpace(input)
	if in == "" {
		return 0, invalidf("parse time", "", "time is empty")
	}

	if !strings.Contains(in, ":") {
		n, err := parseDigits(in)
		if err != nil {
			return 0, invalidf("parse time", "", "%q is not a non-negative whole number of seconds", in)
		}
		return n, nil
	}

	parts := strings.Split(in, ":")
	if len(parts) != 3 {
		return 0, invalidf("parse time", "", "%q is not in H:MM:SS form", in)
	}
	var fields [3]int64
	for i, p := range parts {
		n, err := parseDigits(p)
		if err != nil {
			return 0, invalidf("parse time", "", "%q is not in H:MM:SS form", in)
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, invalidf("parse time", "", "%q has minutes or seconds above 59", in)
	}
	rest := fields[1]*60 + fields[2]
	if fields[0] > (math.MaxInt64-rest)/3600 {
		return 0, invalidf("parse time", "", "%q is too large", in)
	}
	return fields[0]*3600 + rest, nil
}

// parseDigits accepts only ASCII digits, so signs and spaces are rejected.
func parseDigits(s string) (int64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(s, 10, 64)
}
