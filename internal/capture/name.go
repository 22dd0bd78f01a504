package capture

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upperRun = regexp.MustCompile(`\p{Lu}{2,}`)

// NormalizeName converts "LEHTO Kalle" and "kalle lehto" to "Kalle Lehto". A fully
// uppercase first token is read as a family name and moved to the end.
func NormalizeName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}

	if len(parts) >= 2 && parts[0] == strings.ToUpper(parts[0]) && upperRun.MatchString(parts[0]) {
		parts = append(parts[1:], parts[0])
	}

	title := cases.Title(language.Und)
	for i, p := range parts {
		parts[i] = title.String(p)
	}
	return strings.Join(parts, " ")
}
