// Package effort parses SonarQube remediation effort strings such as
// "2h 15min" into total minutes.
package effort

import (
	"strconv"
	"strings"
)

// Unit markers in the order they must be checked: "min" first, since an hour
// token is only recognized when the token is not a minute token.
var units = []struct {
	marker  string
	minutes int
}{
	{"min", 1},
	{"h", 60},
}

// ParseMinutes converts an effort string into total minutes. Tokens that are
// not a clean integer followed by a known unit contribute zero; callers
// cannot distinguish zero effort from unparseable effort, which matches how
// the upstream reports it.
func ParseMinutes(s string) int {
	parts := strings.Fields(normalize(s))

	total := 0
	for _, part := range parts {
		for _, u := range units {
			if !strings.Contains(part, u.marker) {
				continue
			}
			if n, err := strconv.Atoi(strings.ReplaceAll(part, u.marker, "")); err == nil {
				total += n * u.minutes
			}
			break
		}
	}
	return total
}

// normalize splits glued tokens like "2h15min" so each value-unit pair
// stands alone. The space goes after a marker, never inside a pair.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "h", "h ")
	s = strings.ReplaceAll(s, "min", "min ")
	return s
}
