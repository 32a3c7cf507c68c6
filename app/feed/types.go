package feed

import (
	"time"
)

// Item is one normalized article. The first group of fields is captured
// verbatim from the feed XML; the second group is derived during
// normalization. Identity for read tracking is Link, which is stable across
// re-fetches of the same feed.
type Item struct {
	Title       string
	Link        string
	Description string
	PubDateRaw  string
	Creator     string
	ImageURL    string

	CleanTitle       string
	CleanDescription string
	Date             time.Time
	DOI              string
	AbstractSections []AbstractSection

	// Stamped by the orchestrator, not the parser.
	JournalName string
	Category    string
}

// AbstractSection is one titled block of a structured medical abstract,
// e.g. {"BACKGROUND", "..."} or {"CONCLUSIONS AND RELEVANCE", "..."}.
type AbstractSection struct {
	Title   string
	Content string
}
