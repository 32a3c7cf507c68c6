package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/litfeed/litfeed/app/database"
	"github.com/litfeed/litfeed/app/feed"
	"github.com/litfeed/litfeed/app/reader"
	"github.com/litfeed/litfeed/app/sources"
	"github.com/litfeed/litfeed/app/tasks"
)

type fakeReader struct {
	items     []feed.Item
	fetching  bool
	sortCalls []reader.SortOrder
	page      []byte
	pageErr   error
}

func (f *fakeReader) Items() []feed.Item { return f.items }
func (f *fakeReader) IsFetching() bool   { return f.fetching }
func (f *fakeReader) FetchAll(ctx context.Context, srcs []sources.Source) {}
func (f *fakeReader) SortItems(order reader.SortOrder) {
	f.sortCalls = append(f.sortCalls, order)
}
func (f *fakeReader) FetchPage(ctx context.Context, url string) ([]byte, error) {
	return f.page, f.pageErr
}

type fakeRepo struct {
	readURLs map[string]bool
	marked   []database.ReadArticle
	flags    map[string]bool
	articles []database.ReadArticle
	flagErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{readURLs: map[string]bool{}, flags: map[string]bool{}}
}

func (f *fakeRepo) MarkRead(article database.ReadArticle) error {
	f.marked = append(f.marked, article)
	f.readURLs[article.URL] = true
	return nil
}
func (f *fakeRepo) SetFlag(url string, flagged bool) error {
	if f.flagErr != nil {
		return f.flagErr
	}
	f.flags[url] = flagged
	return nil
}
func (f *fakeRepo) ReadURLs() (map[string]bool, error)    { return f.readURLs, nil }
func (f *fakeRepo) List() ([]database.ReadArticle, error) { return f.articles, nil }
func (f *fakeRepo) Count() (int, error)                   { return len(f.articles), nil }

type fakeScheduler struct {
	enqueued []tasks.TaskInterface
	err      error
}

func (f *fakeScheduler) Start() {}
func (f *fakeScheduler) Stop()  {}
func (f *fakeScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, task)
	return nil
}

func testItems() []feed.Item {
	return []feed.Item{
		{
			Title:       "First <b>Trial</b>",
			CleanTitle:  "First Trial",
			Link:        "https://example.com/1",
			Date:        time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC),
			JournalName: "NEJM",
			Category:    "General Medicine",
			DOI:         "10.1056/NEJMoa2034577",
		},
		{
			CleanTitle:  "Second Trial",
			Link:        "https://example.com/2",
			Date:        time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC),
			JournalName: "The Lancet",
		},
	}
}

func newTestStack(rdr *fakeReader, repo *fakeRepo, sched *fakeScheduler, apiKey string) http.Handler {
	handler := NewHandler(rdr, repo, sources.Defaults(),
		feed.ProxyPolicy{Mode: feed.ProxyModePrefix, Prefix: "https://proxy.example.edu/login?url="},
		sched)
	return NewServer(handler, apiKey)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestGetArticles(t *testing.T) {
	rdr := &fakeReader{items: testItems()}
	repo := newFakeRepo()
	repo.readURLs["https://example.com/2"] = true

	srv := newTestStack(rdr, repo, &fakeScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/articles", nil)
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["total"].(float64) != 2 {
		t.Errorf("Expected total 2, got: %v", body["total"])
	}
	if body["unread"].(float64) != 1 {
		t.Errorf("Expected unread 1, got: %v", body["unread"])
	}

	articles := body["articles"].([]interface{})
	first := articles[0].(map[string]interface{})
	if first["title"] != "First Trial" {
		t.Errorf("Expected clean title served, got: %v", first["title"])
	}
	if first["read"] != false {
		t.Errorf("Expected first article unread, got: %v", first["read"])
	}
	if first["doi"] != "10.1056/NEJMoa2034577" {
		t.Errorf("Expected DOI in response, got: %v", first["doi"])
	}
	second := articles[1].(map[string]interface{})
	if second["read"] != true {
		t.Errorf("Expected second article marked read, got: %v", second["read"])
	}
}

func TestGetArticlesSortParameter(t *testing.T) {
	rdr := &fakeReader{items: testItems()}
	srv := newTestStack(rdr, newFakeRepo(), &fakeScheduler{}, "")

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/articles?sort=title", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}
	if len(rdr.sortCalls) != 1 || rdr.sortCalls[0] != reader.SortTitle {
		t.Errorf("Expected one SortTitle call, got: %v", rdr.sortCalls)
	}

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/articles?sort=backwards", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown sort order, got: %d", w.Code)
	}
}

func TestGetOpenArticle(t *testing.T) {
	rdr := &fakeReader{items: testItems()}
	repo := newFakeRepo()
	srv := newTestStack(rdr, repo, &fakeScheduler{}, "")

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/articles/open?url=https://example.com/1", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got: %d", w.Code)
	}
	location := w.Header().Get("Location")
	if location != "https://proxy.example.edu/login?url=https://example.com/1" {
		t.Errorf("Expected proxied redirect target, got: %s", location)
	}

	if len(repo.marked) != 1 {
		t.Fatalf("Expected article marked read, got %d marks", len(repo.marked))
	}
	if repo.marked[0].Title != "First Trial" || repo.marked[0].Publication != "NEJM" {
		t.Errorf("Expected item metadata on read record, got: %+v", repo.marked[0])
	}
}

func TestGetOpenArticleMissingURL(t *testing.T) {
	srv := newTestStack(&fakeReader{}, newFakeRepo(), &fakeScheduler{}, "")

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/articles/open", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got: %d", w.Code)
	}
}

func TestGetArticleContent(t *testing.T) {
	page := `<html><head><title>Trial Report</title></head><body><article>` +
		strings.Repeat("<p>The intervention reduced mortality in the treatment group over follow-up.</p>", 20) +
		`</article></body></html>`
	rdr := &fakeReader{page: []byte(page)}
	srv := newTestStack(rdr, newFakeRepo(), &fakeScheduler{}, "")

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/articles/content?url=https://example.com/1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["url"] != "https://example.com/1" {
		t.Errorf("Expected original url echoed, got: %v", body["url"])
	}
	content, _ := body["content"].(string)
	if !strings.Contains(content, "reduced mortality") {
		t.Errorf("Expected extracted content, got: %q", content)
	}
}

func TestGetArticleContentFetchFailure(t *testing.T) {
	rdr := &fakeReader{pageErr: fmt.Errorf("connection refused")}
	srv := newTestStack(rdr, newFakeRepo(), &fakeScheduler{}, "")

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/articles/content?url=https://example.com/1", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got: %d", w.Code)
	}
}

func TestGetHealth(t *testing.T) {
	rdr := &fakeReader{items: testItems(), fetching: true}
	srv := newTestStack(rdr, newFakeRepo(), &fakeScheduler{}, "")

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["articles"].(float64) != 2 {
		t.Errorf("Expected 2 articles, got: %v", body["articles"])
	}
	if body["fetching"] != true {
		t.Errorf("Expected fetching true, got: %v", body["fetching"])
	}
}

func TestAPIRefresh(t *testing.T) {
	sched := &fakeScheduler{}
	srv := newTestStack(&fakeReader{}, newFakeRepo(), sched, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("X-API-Key", "secret")
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got: %d", w.Code)
	}
	if len(sched.enqueued) != 1 {
		t.Errorf("Expected 1 enqueued task, got: %d", len(sched.enqueued))
	}
}

func TestAPIRefreshQueueFull(t *testing.T) {
	sched := &fakeScheduler{err: fmt.Errorf("task queue is full")}
	srv := newTestStack(&fakeReader{}, newFakeRepo(), sched, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("X-API-Key", "secret")
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got: %d", w.Code)
	}
}

func TestAPIMarkRead(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestStack(&fakeReader{items: testItems()}, repo, &fakeScheduler{}, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/articles/read",
		strings.NewReader(`{"url": "https://example.com/1"}`))
	req.Header.Set("X-API-Key", "secret")
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}
	if len(repo.marked) != 1 || repo.marked[0].URL != "https://example.com/1" {
		t.Errorf("Expected mark for submitted URL, got: %+v", repo.marked)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/articles/read", strings.NewReader(`{}`))
	req.Header.Set("X-API-Key", "secret")
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing url, got: %d", w.Code)
	}
}

func TestAPISetFlag(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestStack(&fakeReader{}, repo, &fakeScheduler{}, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/articles/flag",
		strings.NewReader(`{"url": "https://example.com/1", "flagged": true}`))
	req.Header.Set("X-API-Key", "secret")
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}
	if !repo.flags["https://example.com/1"] {
		t.Error("Expected flag set")
	}

	repo.flagErr = fmt.Errorf("article not found")
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/articles/flag",
		strings.NewReader(`{"url": "https://example.com/missing", "flagged": true}`))
	req.Header.Set("X-API-Key", "secret")
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestStack(&fakeReader{}, newFakeRepo(), &fakeScheduler{}, "secret")

	tests := []struct {
		name     string
		setAuth  func(req *http.Request)
		expected int
	}{
		{
			name:     "no key",
			setAuth:  func(req *http.Request) {},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "wrong key",
			setAuth:  func(req *http.Request) { req.Header.Set("X-API-Key", "wrong") },
			expected: http.StatusUnauthorized,
		},
		{
			name:     "valid header key",
			setAuth:  func(req *http.Request) { req.Header.Set("X-API-Key", "secret") },
			expected: http.StatusAccepted,
		},
		{
			name:     "valid bearer token",
			setAuth:  func(req *http.Request) { req.Header.Set("Authorization", "Bearer secret") },
			expected: http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/refresh", nil)
			tt.setAuth(req)
			srv.ServeHTTP(w, req)
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got: %d", tt.expected, w.Code)
			}
		})
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	srv := newTestStack(&fakeReader{}, newFakeRepo(), &fakeScheduler{}, "")

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("POST", "/api/refresh", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 when API key is unset, got: %d", w.Code)
	}
}
