package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ligatures = strings.NewReplacer(
		"ﬁ", "fi",
		"ﬂ", "fl",
		"ﬀ", "ff",
		"ﬃ", "ffi",
		"ﬄ", "ffl",
		"ﬆ", "st",
		"\u00ad", "", // weicher Trennstrich
	)
	spaceRun      = regexp.MustCompile("[ \t\f\v\u00a0]+")
	newlineRun    = regexp.MustCompile(`\n{3,}`)
	anyWhitespace = regexp.MustCompile(`\s+`)
)

// normalizeUnicode ersetzt Ligaturen aus PDF-Kopien und bringt den Text in NFC.
func normalizeUnicode(s string) string {
	s = ligatures.Replace(s)
	out, _, err := transform.String(norm.NFC, s)
	if err != nil {
		return s
	}
	return out
}

// cleanLine normalisiert einzeilige Felder wie Titel, Autoren und Keywords.
func cleanLine(s string) string {
	s = normalizeUnicode(s)
	return strings.TrimSpace(anyWhitespace.ReplaceAllString(s, " "))
}

// cleanAbstract behält Zeilenumbrüche und Trennstriche wie eingegeben und
// entfernt nur überzählige Leerzeichen und Leerzeilen.
func cleanAbstract(s string) string {
	s = normalizeUnicode(strings.ReplaceAll(s, "\r\n", "\n"))
	s = spaceRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRightFunc(lines[i], unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
