// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase upper-cases the first letter of each word and lower-cases the
// rest, collapsing internal whitespace. A Caser is stateful, so one is
// created per call.
func TitleCase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}
