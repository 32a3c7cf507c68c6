package database

import (
	"time"
)

// ReadArticle marks one article as read. URL is the article's feed link and
// the table's natural key: read status must survive re-fetches that produce
// structurally new item objects for the same article.
type ReadArticle struct {
	ID          int64
	URL         string
	Title       string
	Category    string
	Publication string
	DateRead    time.Time
	IsFlagged   bool
}
