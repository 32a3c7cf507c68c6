package feed

import (
	"regexp"
	"strings"
)

// doiRe matches the registrant/suffix shape used by Crossref DOIs. The suffix
// charset is deliberately broad; trailing sentence punctuation is trimmed
// after matching instead of complicating the expression.
var doiRe = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:a-zA-Z0-9]+`)

// ExtractDOI returns the first DOI found in the item's link, then its
// description, or "" when neither contains one.
func ExtractDOI(item Item) string {
	for _, field := range []string{item.Link, item.Description} {
		if doi := findDOI(field); doi != "" {
			return doi
		}
	}
	return ""
}

func findDOI(s string) string {
	match := doiRe.FindString(s)
	if match == "" {
		return ""
	}
	return strings.TrimRight(match, ".,;")
}
