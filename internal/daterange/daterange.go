// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package daterange canonicalizes free-text employment durations.
//
// Every output is either empty or matches CanonicalPattern:
//
//	Jul 2021 – Dec 2023
//	Jul 2021 – Present
//	2020 – 2023
//	2020 – Present
//
// Inputs are tried against an ordered cascade of formats; the first format
// that matches wins. When none matches, the years are recovered from the
// duration text itself and then from evidence text belonging to the same
// project (its overview or title). Text from other projects is never used.
package daterange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dash is the separator placed between the two ends of a range.
const Dash = " – "

// Present is the open end of a running range.
const Present = "Present"

// DefaultPivot resolves two-digit years: 00..30 are 20xx, 31..99 are 19xx.
const DefaultPivot = 30

var monthAbbr = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// CanonicalPattern matches every non-empty output of Normalize.
var CanonicalPattern = regexp.MustCompile(
	`^(?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) )?\d{4} – (?:(?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) )?\d{4}|Present)$`)

// monthNames maps English and German month names and abbreviations to
// month numbers.
var monthNames = map[string]int{
	"jan": 1, "january": 1, "januar": 1, "jän": 1, "jänner": 1,
	"feb": 2, "february": 2, "februar": 2,
	"mar": 3, "march": 3, "mär": 3, "märz": 3, "maerz": 3,
	"apr": 4, "april": 4,
	"may": 5, "mai": 5,
	"jun": 6, "june": 6, "juni": 6,
	"jul": 7, "july": 7, "juli": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10, "okt": 10, "oktober": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12, "dez": 12, "dezember": 12,
}

var (
	openEndRe = regexp.MustCompile(`(?i)(^|[^\p{L}])(?:bis heute|bis jetzt|to date|until now|till now|up to now|up to date)($|[^\p{L}])`)
	presentRe = regexp.MustCompile(`(?i)(^|[^\p{L}])(now|today|currently|current|present|ongoing|jetzt|heute|aktuell|gegenwärtig|momentan|derzeit)($|[^\p{L}])`)
	repeatRe  = regexp.MustCompile(`-(?:\s*-)+`)
	dashRe    = regexp.MustCompile(`[‐‑‒–—―−-]+`)
	wordSepRe = regexp.MustCompile(`(?i)\s+(?:to|bis|until|till)\s+`)
	sinceRe   = regexp.MustCompile(`(?i)^(?:since|seit|from|ab)\s+(.+)$`)
	spaceRe   = regexp.MustCompile(`\s+`)
	aroundRe  = regexp.MustCompile(`\s*-\s*`)

	numericRangeRe = regexp.MustCompile(`^(\d{1,2})[./](\d{4}|\d{2}) - (?:(\d{1,2})[./](\d{4}|\d{2})|(Present))$`)
	numericOpenRe  = regexp.MustCompile(`^(\d{1,2})[./](\d{4}|\d{2}) -$`)
	yearRangeRe    = regexp.MustCompile(`^((?:19|20)\d{2}) - ((?:19|20)\d{2}|\d{2}|Present)$`)
	yearOpenRe     = regexp.MustCompile(`^((?:19|20)\d{2}) -$`)
	namedRangeRe   = regexp.MustCompile(`^(\p{L}+)\.? ((?:19|20)\d{2}) - (?:(?:(\p{L}+)\.? )?((?:19|20)\d{2})|(Present))$`)
	namedOpenRe    = regexp.MustCompile(`^(\p{L}+)\.? ((?:19|20)\d{2}) -$`)

	dateMarkerRe = regexp.MustCompile(`(?is)\[DATE\](.*?)\[/DATE\]`)
	yearTokenRe  = regexp.MustCompile(`(^|[^\d])((?:19|20)\d{2})($|[^\d])`)
)

// Normalizer canonicalizes durations. The zero value is not usable; call New.
type Normalizer struct {
	pivot int
}

// New returns a Normalizer using pivot for two-digit years. A pivot outside
// 0..99 selects DefaultPivot.
func New(pivot int) *Normalizer {
	if pivot < 0 || pivot > 99 {
		pivot = DefaultPivot
	}
	return &Normalizer{pivot: pivot}
}

// Normalize returns the canonical form of duration, or an empty string.
// Evidence strings are searched, in order, only when duration is blank; a
// non-empty duration is resolved from its own text or cleared.
func (n *Normalizer) Normalize(duration string, evidence ...string) string {
	if strings.TrimSpace(duration) != "" {
		if out, ok := n.parse(duration); ok {
			return out
		}
		out, _ := n.recoverYears(prepare(duration))
		return out
	}
	for _, ev := range evidence {
		for _, m := range dateMarkerRe.FindAllStringSubmatch(ev, -1) {
			if out, ok := n.parse(m[1]); ok {
				return out
			}
			if out, ok := n.recoverYears(prepare(m[1])); ok {
				return out
			}
		}
	}
	for _, ev := range evidence {
		if out, ok := n.recoverYears(prepare(dateMarkerRe.ReplaceAllString(ev, "$1"))); ok {
			return out
		}
	}
	return ""
}

// IsCanonical reports whether s is a canonical range.
func IsCanonical(s string) bool {
	return CanonicalPattern.MatchString(s)
}

// prepare unifies present synonyms, dash variants, word separators and
// whitespace so the format matchers see one spelling.
func prepare(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	s = openEndRe.ReplaceAllString(s, "${1} - "+Present+"${2}")
	// Run twice so adjacent synonyms sharing a separator are both replaced.
	for i := 0; i < 2; i++ {
		s = presentRe.ReplaceAllString(s, "${1}"+Present+"${3}")
	}
	s = dashRe.ReplaceAllString(s, "-")
	s = repeatRe.ReplaceAllString(s, "-")
	s = wordSepRe.ReplaceAllString(s, " - ")
	if m := sinceRe.FindStringSubmatch(s); m != nil && !strings.Contains(m[1], "-") {
		s = m[1] + " -"
	}
	s = aroundRe.ReplaceAllString(s, " - ")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "- ") {
		s = strings.TrimSpace(s[2:])
	}
	return s
}

type date struct {
	month int // 0 when only the year is known
	year  int
}

func (d date) String() string {
	if d.month == 0 {
		return strconv.Itoa(d.year)
	}
	return fmt.Sprintf("%s %d", monthAbbr[d.month-1], d.year)
}

func (d date) after(o date) bool {
	if d.year != o.year {
		return d.year > o.year
	}
	return d.month > o.month
}

// format renders a range, swapping the ends when start follows end. A nil
// end is Present.
func format(start date, end *date) string {
	if end == nil {
		return start.String() + Dash + Present
	}
	if start.after(*end) {
		start, *end = *end, start
	}
	return start.String() + Dash + end.String()
}

// parse runs the format cascade over a prepared duration.
func (n *Normalizer) parse(raw string) (string, bool) {
	s := prepare(raw)
	if s == "" {
		return "", false
	}

	if m := numericRangeRe.FindStringSubmatch(s); m != nil {
		start, ok := n.numeric(m[1], m[2])
		if ok {
			if m[5] != "" {
				return format(start, nil), true
			}
			if end, ok := n.numeric(m[3], m[4]); ok {
				return format(start, &end), true
			}
		}
	}

	if m := numericOpenRe.FindStringSubmatch(s); m != nil {
		if start, ok := n.numeric(m[1], m[2]); ok {
			return format(start, nil), true
		}
	}

	if m := yearRangeRe.FindStringSubmatch(s); m != nil {
		start := date{year: atoi(m[1])}
		if m[2] == Present {
			return format(start, nil), true
		}
		end := date{year: n.year(m[2])}
		return format(start, &end), true
	}

	if m := yearOpenRe.FindStringSubmatch(s); m != nil {
		return format(date{year: atoi(m[1])}, nil), true
	}

	if m := namedRangeRe.FindStringSubmatch(s); m != nil {
		startMonth, ok := lookupMonth(m[1])
		if ok {
			start := date{month: startMonth, year: atoi(m[2])}
			if m[5] != "" {
				return format(start, nil), true
			}
			end := date{year: atoi(m[4])}
			if m[3] != "" {
				endMonth, ok := lookupMonth(m[3])
				if !ok {
					return "", false
				}
				end.month = endMonth
			}
			return format(start, &end), true
		}
	}

	if m := namedOpenRe.FindStringSubmatch(s); m != nil {
		if month, ok := lookupMonth(m[1]); ok {
			return format(date{month: month, year: atoi(m[2])}, nil), true
		}
	}

	return "", false
}

// recoverYears finds the first year in s followed by a later year token or
// Present.
func (n *Normalizer) recoverYears(s string) (string, bool) {
	loc := yearTokenRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", false
	}
	start := date{year: atoi(s[loc[4]:loc[5]])}
	rest := s[loc[5]:]

	endLoc := yearTokenRe.FindStringSubmatchIndex(rest)
	presentAt := strings.Index(rest, Present)

	switch {
	case endLoc != nil && (presentAt < 0 || endLoc[4] < presentAt):
		end := date{year: atoi(rest[endLoc[4]:endLoc[5]])}
		return format(start, &end), true
	case presentAt >= 0:
		return format(start, nil), true
	}
	return "", false
}

// numeric resolves a month number and a two- or four-digit year.
func (n *Normalizer) numeric(month, year string) (date, bool) {
	m := atoi(month)
	if m < 1 || m > 12 {
		return date{}, false
	}
	y := n.year(year)
	if y < 1900 || y > 2099 {
		return date{}, false
	}
	return date{month: m, year: y}, true
}

func (n *Normalizer) year(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		if y <= n.pivot {
			return 2000 + y
		}
		return 1900 + y
	}
	return y
}

func lookupMonth(name string) (int, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSuffix(name, "."))]
	return m, ok
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
