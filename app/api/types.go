package api

import (
	"context"
	"time"

	"github.com/litfeed/litfeed/app/database"
	"github.com/litfeed/litfeed/app/feed"
	"github.com/litfeed/litfeed/app/reader"
	"github.com/litfeed/litfeed/app/sources"
	"github.com/litfeed/litfeed/app/tasks"
)

// ReaderInterface is the slice of the reader the HTTP layer depends on.
type ReaderInterface interface {
	Items() []feed.Item
	IsFetching() bool
	FetchAll(ctx context.Context, srcs []sources.Source)
	SortItems(order reader.SortOrder)
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

var _ ReaderInterface = (*reader.Reader)(nil)

type ExtractorInterface interface {
	Run(data []byte, pageURL string) (*feed.ExtractedArticle, error)
}

var _ ExtractorInterface = (*feed.ContentExtractor)(nil)

type Handler struct {
	reader    ReaderInterface
	readRepo  database.ReadArticleRepository
	sources   []sources.Source
	extractor ExtractorInterface
	proxy     feed.ProxyPolicy
	scheduler tasks.TaskSchedulerInterface
}

// articleResponse is one published item as served to clients, with the
// read marker resolved against the read-article store by link equality.
type articleResponse struct {
	Title            string                 `json:"title"`
	Link             string                 `json:"link"`
	Description      string                 `json:"description"`
	Date             time.Time              `json:"date"`
	Creator          string                 `json:"creator,omitempty"`
	Journal          string                 `json:"journal"`
	Category         string                 `json:"category,omitempty"`
	ImageURL         string                 `json:"image_url,omitempty"`
	DOI              string                 `json:"doi,omitempty"`
	AbstractSections []abstractSectionBlock `json:"abstract_sections,omitempty"`
	Read             bool                   `json:"read"`
}

type abstractSectionBlock struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type markReadRequest struct {
	URL string `json:"url" binding:"required"`
}

type flagRequest struct {
	URL     string `json:"url" binding:"required"`
	Flagged bool   `json:"flagged"`
}
