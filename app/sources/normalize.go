package sources

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// DisplayName produces a canonical display form of a source name: trimmed,
// inner whitespace collapsed, and title-cased without lowering letters that
// are already capitalized (so "BBC news" becomes "BBC News", not "Bbc News").
func DisplayName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(fields, " "))
}
