package feed

import (
	"regexp"
	"strings"
)

// DefaultBlockTags maps block-level tags to the text that replaces them.
// The replacement runs before generic tag stripping, otherwise paragraph and
// list structure is lost.
var DefaultBlockTags = map[string]string{
	"p":   "\n\n",
	"br":  "\n",
	"li":  "\n• ",
	"div": "\n",
}

var (
	blockTagRe = make(map[string]*regexp.Regexp)
	anyTagRe   = regexp.MustCompile(`<[^>]*>`)
)

func init() {
	for tag := range DefaultBlockTags {
		blockTagRe[tag] = regexp.MustCompile(`(?i)<` + tag + `[^>]*>`)
	}
}

// entityTable is the fixed set of named entities decoded by StripHTML.
// Feeds in the wild rarely use anything beyond these; numeric references are
// left alone on purpose.
var entityTable = []struct{ from, to string }{
	{"&quot;", `"`},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&nbsp;", " "},
	{"&rsquo;", "’"},
	{"&lsquo;", "‘"},
	{"&rdquo;", "”"},
	{"&ldquo;", "“"},
	{"&ndash;", "-"},
	{"&mdash;", "—"},
}

// StripHTML converts an HTML fragment into plain text using the default
// block-tag map.
func StripHTML(s string) string {
	return StripHTMLTags(s, DefaultBlockTags)
}

// StripHTMLTags converts an HTML fragment into plain text: block tags become
// newlines per the given map, all remaining tags are removed, the fixed
// entity table is decoded, and lines are trimmed with empty lines dropped.
// The result has no leading or trailing blank lines.
func StripHTMLTags(s string, blockTags map[string]string) string {
	if s == "" {
		return ""
	}

	for tag, repl := range blockTags {
		re, ok := blockTagRe[tag]
		if !ok {
			re = regexp.MustCompile(`(?i)<` + tag + `[^>]*>`)
		}
		s = re.ReplaceAllString(s, repl)
	}

	s = anyTagRe.ReplaceAllString(s, "")

	for _, e := range entityTable {
		s = strings.ReplaceAll(s, e.from, e.to)
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}
