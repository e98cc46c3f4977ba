package albumkit

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	separatorRuns  = regexp.MustCompile(`[-_]+`)
	whitespaceRuns = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// Humanize turns a file system safe identifier such as "my-trip_2024" into a
// title such as "My Trip 2024". Letters after the first are left as-is.
func Humanize(s string) string {
	s = separatorRuns.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	prevWord := false
	for _, r := range s {
		word := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if word && !prevWord {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevWord = word
	}
	return b.String()
}

// stem strips the final extension from a file name.
func stem(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}
