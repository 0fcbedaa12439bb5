package demographic

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLocation builds the cache key for a location: NFKC-normalized,
// case-folded, whitespace collapsed, and comma parts joined by ", ".
func NormalizeLocation(location string) string {
	s := cases.Fold().String(norm.NFKC.String(location))
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
