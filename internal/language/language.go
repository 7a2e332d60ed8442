// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package language normalizes declared spoken languages and their
// proficiency levels. Declared levels are kept as written; a missing level
// becomes "Unspecified" and is never guessed. Only when the extractor
// declared no language at all is the source text scanned.
package language

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/cv-normalizer/internal/coerce"
	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

const (
	// windowAfter and windowBefore bound the text inspected around a
	// language mention, in characters.
	windowAfter  = 60
	windowBefore = 40
)

var (
	blockRe     = regexp.MustCompile(`(?is)\[LANGUAGES\](.*?)\[/LANGUAGES\]`)
	inlineLevel = regexp.MustCompile(`^\s*([^(:–—\-]+?)\s*[(:–—\-]\s*([^)]*?)\s*\)?\s*$`)
	cefrRe      = regexp.MustCompile(`^[ABCabc][12]\+?$`)
)

type matcher struct {
	name string
	re   *regexp.Regexp
}

// Resolver resolves language lists against the configured tables.
type Resolver struct {
	languages []matcher
	levelRe   *regexp.Regexp
}

// NewResolver compiles the language and proficiency lists from tables.
func NewResolver(tables *taxonomy.Tables) (*Resolver, error) {
	r := &Resolver{}
	for _, l := range tables.Languages {
		for _, name := range append([]string{l.Name}, l.Aliases...) {
			re, err := taxonomy.WholeWord(name)
			if err != nil {
				return nil, err
			}
			r.languages = append(r.languages, matcher{name: l.Name, re: re})
		}
	}

	terms := []string{`[ABC][12]\+?`}
	for _, p := range tables.Proficiency {
		words := strings.Fields(p)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		terms = append(terms, strings.Join(words, `\s+`))
	}
	re, err := regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(terms, "|") + `)(?:$|[^\p{L}\p{N}+])`)
	if err != nil {
		return nil, err
	}
	r.levelRe = re
	return r, nil
}

// Resolve returns the normalized language list. Declared candidates win;
// source is scanned only when none of them names a language.
func (r *Resolver) Resolve(raw any, source string) []types.Language {
	out := Declared(raw)
	if len(out) == 0 && strings.TrimSpace(source) != "" {
		out = r.Scan(source)
	}
	return dedup(out)
}

// Declared normalizes extractor candidates: strings, {language, level}
// objects, or {Sprache, Niveau} objects. Candidates without a language are
// dropped.
func Declared(raw any) []types.Language {
	out := []types.Language{}
	for _, item := range coerce.Items(raw) {
		var name, level string
		if m := coerce.Map(item); m != nil {
			name = coerce.String(coerce.Lookup(m, "language", "Language", "Sprache", "name"))
			level = coerce.String(coerce.Lookup(m, "level", "Level", "Niveau", "proficiency"))
		} else {
			name = coerce.String(item)
			if m := inlineLevel.FindStringSubmatch(name); m != nil {
				name, level = m[1], m[2]
			}
		}
		name = taxonomy.TitleCase(name)
		if name == "" {
			continue
		}
		out = append(out, types.Language{Language: name, Level: normalizeLevel(level)})
	}
	return out
}

// Scan looks for known languages in the source, preferring a [LANGUAGES]
// block when one is present. A level is taken from the text following the
// mention, then from the text preceding it, never crossing into another
// language's mention.
func (r *Resolver) Scan(source string) []types.Language {
	text := source
	if m := blockRe.FindStringSubmatch(source); m != nil {
		text = m[1]
	}

	type mention struct {
		name       string
		start, end int
	}
	var mentions []mention
	for _, l := range r.languages {
		for _, loc := range l.re.FindAllStringIndex(text, -1) {
			start, end := trimBoundary(text, loc[0], loc[1])
			mentions = append(mentions, mention{name: l.name, start: start, end: end})
		}
	}
	sort.SliceStable(mentions, func(i, j int) bool {
		if mentions[i].start != mentions[j].start {
			return mentions[i].start < mentions[j].start
		}
		return mentions[i].end > mentions[j].end
	})

	// A mention inside an earlier, longer one ("German" in "Swiss German")
	// or repeating its span is dropped.
	kept := mentions[:0]
	for _, m := range mentions {
		if len(kept) > 0 && m.start < kept[len(kept)-1].end {
			continue
		}
		kept = append(kept, m)
	}
	mentions = kept

	out := []types.Language{}
	for i, m := range mentions {
		afterEnd := advance(text, m.end, windowAfter)
		if i+1 < len(mentions) && mentions[i+1].start < afterEnd {
			afterEnd = max(mentions[i+1].start, m.end)
		}
		beforeStart := retreat(text, m.start, windowBefore)
		if i > 0 && mentions[i-1].end > beforeStart {
			beforeStart = min(mentions[i-1].end, m.start)
		}

		level := ""
		if loc := r.levelRe.FindStringSubmatchIndex(text[m.end:afterEnd]); loc != nil {
			level = text[m.end+loc[2] : m.end+loc[3]]
		} else if all := r.levelRe.FindAllStringSubmatchIndex(text[beforeStart:m.start], -1); len(all) > 0 {
			last := all[len(all)-1]
			level = text[beforeStart+last[2] : beforeStart+last[3]]
		}
		if !cefrRe.MatchString(level) {
			level = taxonomy.TitleCase(level)
		}
		out = append(out, types.Language{Language: m.name, Level: normalizeLevel(level)})
	}
	return out
}

// normalizeLevel upper-cases CEFR codes and fills Unspecified for blanks.
// Other levels keep their spelling.
func normalizeLevel(level string) string {
	level = strings.Join(strings.Fields(level), " ")
	switch {
	case level == "":
		return types.UnspecifiedLevel
	case cefrRe.MatchString(level):
		return strings.ToUpper(level)
	}
	return level
}

func dedup(in []types.Language) []types.Language {
	seen := make(map[string]bool, len(in))
	out := []types.Language{}
	for _, l := range in {
		key := strings.ToLower(l.Language)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

// trimBoundary narrows a whole-word match to the word itself, dropping the
// boundary characters the matcher consumed.
func trimBoundary(text string, start, end int) (int, int) {
	if start < end {
		if r, size := utf8.DecodeRuneInString(text[start:]); !isWordRune(r) {
			start += size
		}
	}
	if start < end {
		if r, size := utf8.DecodeLastRuneInString(text[:end]); !isWordRune(r) {
			end -= size
		}
	}
	return start, end
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// advance returns the byte offset n runes after i.
func advance(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// retreat returns the byte offset n runes before i.
func retreat(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}
