package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/litfeed/litfeed/app/database"
	"github.com/litfeed/litfeed/app/feed"
	"github.com/litfeed/litfeed/app/reader"
	"github.com/litfeed/litfeed/app/sources"
	"github.com/litfeed/litfeed/app/tasks"
)

func NewHandler(rdr ReaderInterface, readRepo database.ReadArticleRepository,
	srcs []sources.Source, proxy feed.ProxyPolicy,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		reader:    rdr,
		readRepo:  readRepo,
		sources:   srcs,
		extractor: feed.NewContentExtractor(),
		proxy:     proxy,
		scheduler: scheduler,
	}
}

// GetArticles serves the published list. An optional sort parameter re-sorts
// the published list in place before serving, without re-fetching.
func (h *Handler) GetArticles(c *gin.Context) {
	if order := c.Query("sort"); order != "" {
		switch reader.SortOrder(order) {
		case reader.SortMostRecent, reader.SortTitle, reader.SortCreator, reader.SortShuffle:
			h.reader.SortItems(reader.SortOrder(order))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sort order"})
			return
		}
	}

	items := h.reader.Items()

	readURLs, err := h.readRepo.ReadURLs()
	if err != nil {
		slog.Error("Database error", "operation", "read_urls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	articles := make([]articleResponse, 0, len(items))
	unread := 0
	for _, item := range items {
		read := readURLs[item.Link]
		if !read {
			unread++
		}
		articles = append(articles, toArticleResponse(item, read))
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"total":    len(articles),
		"unread":   unread,
		"fetching": h.reader.IsFetching(),
	})
}

// GetOpenArticle resolves an article link through the proxy policy and
// redirects to it, marking the article read on the way out.
func (h *Handler) GetOpenArticle(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	article := database.ReadArticle{URL: url}
	if item, ok := h.findItem(url); ok {
		article.Title = item.CleanTitle
		article.Category = item.Category
		article.Publication = item.JournalName
	}

	if err := h.readRepo.MarkRead(article); err != nil {
		slog.Error("Failed to mark article read", "url", url, "error", err)
	}

	c.Redirect(http.StatusFound, h.proxy.Rewrite(url))
}

// GetArticleContent fetches the full article page (through the proxy
// policy, which institutional full text usually requires) and returns the
// readable portion.
func (h *Handler) GetArticleContent(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	target := h.proxy.Rewrite(url)

	data, err := h.reader.FetchPage(c.Request.Context(), target)
	if err != nil {
		slog.Error("Failed to fetch article page", "url", target, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch article page"})
		return
	}

	article, err := h.extractor.Run(data, target)
	if err != nil {
		slog.Error("Content extraction failed", "url", target, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to extract article content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":     url,
		"title":   article.Title,
		"excerpt": article.Excerpt,
		"content": article.Content,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"sources":  len(h.sources),
		"articles": len(h.reader.Items()),
		"fetching": h.reader.IsFetching(),
	}

	if count, err := h.readRepo.Count(); err == nil {
		health["read_articles"] = count
	}

	c.JSON(http.StatusOK, health)
}

// APIRefresh enqueues a full refresh and returns immediately; the published
// list is swapped atomically when the batch completes.
func (h *Handler) APIRefresh(c *gin.Context) {
	task := tasks.NewRefreshFeedsTask(h.reader, h.sources)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue refresh", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Refresh queue is full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "refresh scheduled"})
}

func (h *Handler) APIMarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url field"})
		return
	}

	article := database.ReadArticle{URL: req.URL}
	if item, ok := h.findItem(req.URL); ok {
		article.Title = item.CleanTitle
		article.Category = item.Category
		article.Publication = item.JournalName
	}

	if err := h.readRepo.MarkRead(article); err != nil {
		slog.Error("Failed to mark article read", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read", "url": req.URL})
}

func (h *Handler) APISetFlag(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url field"})
		return
	}

	if err := h.readRepo.SetFlag(req.URL, req.Flagged); err != nil {
		slog.Error("Failed to set flag", "url", req.URL, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "flagged", "url": req.URL, "flagged": req.Flagged})
}

func (h *Handler) APIListRead(c *gin.Context) {
	articles, err := h.readRepo.List()
	if err != nil {
		slog.Error("Database error", "operation", "list_read", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"total":    len(articles),
	})
}

// findItem locates a published item by its link, the item's identity.
func (h *Handler) findItem(url string) (feed.Item, bool) {
	for _, item := range h.reader.Items() {
		if item.Link == url {
			return item, true
		}
	}
	return feed.Item{}, false
}

func toArticleResponse(item feed.Item, read bool) articleResponse {
	resp := articleResponse{
		Title:       item.CleanTitle,
		Link:        item.Link,
		Description: item.CleanDescription,
		Date:        item.Date,
		Creator:     item.Creator,
		Journal:     item.JournalName,
		Category:    item.Category,
		ImageURL:    item.ImageURL,
		DOI:         item.DOI,
		Read:        read,
	}

	for _, s := range item.AbstractSections {
		resp.AbstractSections = append(resp.AbstractSections, abstractSectionBlock{
			Title:   s.Title,
			Content: s.Content,
		})
	}

	return resp
}
