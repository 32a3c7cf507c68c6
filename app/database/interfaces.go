package database

// ReadArticleRepository owns the read_articles table. The ingestion core
// never writes here; only the HTTP layer marks articles read.
type ReadArticleRepository interface {
	MarkRead(article ReadArticle) error
	SetFlag(url string, flagged bool) error
	ReadURLs() (map[string]bool, error)
	List() ([]ReadArticle, error)
	Count() (int, error)
}
