package feed

import (
	"regexp"
	"strings"
	"unicode"
)

// abstractHeaders is the allow-list of structured-abstract section headers
// used by the major medical journals. Longer variants come first so the
// alternation prefers them ("CONCLUSIONS AND RELEVANCE" over "CONCLUSIONS").
var abstractHeaders = []string{
	"CONCLUSIONS AND RELEVANCE",
	"MAIN OUTCOME MEASURES",
	"DATA EXTRACTION",
	"DATA SOURCES",
	"DATA SYNTHESIS",
	"STUDY SELECTION",
	"REVIEW METHODS",
	"MEASUREMENTS",
	"INTERVENTIONS",
	"PARTICIPANTS",
	"LIMITATIONS",
	"CONCLUSIONS",
	"BACKGROUND",
	"IMPORTANCE",
	"OBJECTIVE",
	"PATIENTS",
	"RESULTS",
	"METHODS",
	"SETTING",
	"DESIGN",
}

// A header counts only when anchored at the start of the text, after a
// period, or after a newline. What follows it is validated separately,
// RE2 has no lookahead.
var abstractHeaderRe = regexp.MustCompile(`(?:^|\.|\n)\s*(` + strings.Join(abstractHeaders, "|") + `)`)

// SegmentAbstract splits a structured medical abstract into titled sections.
// The description is stripped of markup first (block tags become newlines so
// "<br>BACKGROUND" still anchors). Returns nil when no header matches, so
// callers fall back to rendering the plain description.
func SegmentAbstract(description string) []AbstractSection {
	text := StripHTML(description)
	text = strings.TrimSpace(strings.TrimPrefix(text, "Abstract"))
	if text == "" {
		return nil
	}

	type headerMatch struct {
		title      string
		start, end int
	}

	var matches []headerMatch
	for _, loc := range abstractHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		if !validHeaderBoundary(text[end:]) {
			continue
		}
		matches = append(matches, headerMatch{text[start:end], start, end})
	}

	if len(matches) == 0 {
		return nil
	}

	sections := make([]AbstractSection, 0, len(matches))
	for i, m := range matches {
		contentEnd := len(text)
		if i+1 < len(matches) {
			contentEnd = matches[i+1].start
		}
		content := text[m.end:contentEnd]
		content = strings.TrimLeft(content, ":-–— \t\n")
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		sections = append(sections, AbstractSection{Title: m.title, Content: content})
	}

	if len(sections) == 0 {
		return nil
	}
	return sections
}

// validHeaderBoundary reports whether the text following a header keyword
// looks like a section break: a colon, dash, newline, or whitespace followed
// by an uppercase letter.
func validHeaderBoundary(rest string) bool {
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ':', '-', '\n':
		return true
	}
	if strings.HasPrefix(rest, "–") || strings.HasPrefix(rest, "—") {
		return true
	}
	if rest[0] == ' ' || rest[0] == '\t' {
		next := strings.TrimLeft(rest, " \t")
		if next == "" {
			return true
		}
		// Separators may float after the header, "IMPORTANCE —" style.
		if next[0] == ':' || next[0] == '-' ||
			strings.HasPrefix(next, "–") || strings.HasPrefix(next, "—") {
			return true
		}
		return unicode.IsUpper(rune(next[0]))
	}
	return false
}
