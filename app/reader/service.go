package reader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/litfeed/litfeed/app/feed"
	"github.com/litfeed/litfeed/app/sources"
)

const maxResponseSize = 10 * 1024 * 1024

// SortOrder selects the published list's ordering.
type SortOrder string

const (
	SortMostRecent SortOrder = "recent"
	SortTitle      SortOrder = "title"
	SortCreator    SortOrder = "creator"
	SortShuffle    SortOrder = "shuffle"
)

// Snapshot is a complete published state: the full item list plus the
// fetching flag. Consumers never see a partially merged batch.
type Snapshot struct {
	Items    []feed.Item
	Fetching bool
}

// Reader orchestrates feed fetching: concurrent fan-out over the source
// list, per-source failure isolation, merge, sort, and atomic snapshot
// publication. A new fetch supersedes an in-flight one: batches carry a
// generation number and only the most recently requested batch may publish
// (last-requested-wins).
type Reader struct {
	client    *http.Client
	userAgent string

	mu         sync.Mutex
	items      []feed.Item
	fetching   bool
	generation uint64
	subs       []chan Snapshot
}

func New(client *http.Client, userAgent string) *Reader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Reader{
		client:    client,
		userAgent: userAgent,
	}
}

// Items returns a copy of the published item list.
func (r *Reader) Items() []feed.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

func (r *Reader) IsFetching() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetching
}

// Subscribe returns a channel receiving every published snapshot. The
// channel holds one pending snapshot; when a subscriber lags, older
// snapshots are dropped in favor of the newest.
func (r *Reader) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}

// FetchOne replaces the published list with one source's items. Failure
// publishes an empty list; it never returns an error to the caller.
func (r *Reader) FetchOne(ctx context.Context, src sources.Source) {
	r.FetchAll(ctx, []sources.Source{src})
}

// FetchAll fetches every source concurrently, substitutes an empty body for
// any source that fails, and publishes the merged result sorted by date
// descending once all requests have settled. One dead journal never blocks
// the others.
func (r *Reader) FetchAll(ctx context.Context, srcs []sources.Source) {
	gen := r.beginBatch()

	bodies := make([][]byte, len(srcs))
	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			data, err := r.fetchFeed(ctx, src.URL)
			if err != nil {
				slog.Warn("Feed fetch failed, source contributes no items",
					"source", src.Name, "error", err)
				return
			}
			bodies[i] = data
		}(i, src)
	}
	wg.Wait()

	var merged []feed.Item
	for i, src := range srcs {
		if len(bodies[i]) == 0 {
			continue
		}
		items, err := feed.NewParser().Run(bodies[i])
		if err != nil {
			slog.Warn("Feed parse failed, source contributes no items",
				"source", src.Name, "error", err)
			continue
		}
		for j := range items {
			items[j].JournalName = src.Name
			items[j].Category = src.Category
		}
		merged = append(merged, items...)
	}

	sortItems(merged, SortMostRecent)
	r.publish(gen, merged)
}

// SortItems re-sorts the currently published list without re-fetching.
func (r *Reader) SortItems(order SortOrder) {
	r.mu.Lock()
	sortItems(r.items, order)
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snap)
}

// Shuffle randomizes the published order in place. Whether the transition is
// animated is a presentation concern; the permutation is the same.
func (r *Reader) Shuffle() {
	r.SortItems(SortShuffle)
}

// beginBatch starts a new fetch generation: the published list is cleared
// and the fetching flag raised in one step.
func (r *Reader) beginBatch() uint64 {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.items = nil
	r.fetching = true
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snap)
	return gen
}

// publish installs a batch's merged result, unless a newer batch has been
// requested since, in which case the stale result is discarded.
func (r *Reader) publish(gen uint64, items []feed.Item) {
	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		slog.Debug("Discarding superseded fetch result", "generation", gen)
		return
	}
	r.items = items
	r.fetching = false
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snap)
}

func (r *Reader) snapshotLocked() Snapshot {
	return Snapshot{
		Items:    slices.Clone(r.items),
		Fetching: r.fetching,
	}
}

func (r *Reader) notify(snap Snapshot) {
	r.mu.Lock()
	subs := slices.Clone(r.subs)
	r.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (r *Reader) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// FetchPage retrieves a full article page for content extraction. Unlike
// feed fetches, a failure here is returned to the caller.
func (r *Reader) FetchPage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// sortItems applies a stable sort, so date ties keep their source order and
// repeated sorts are idempotent.
func sortItems(items []feed.Item, order SortOrder) {
	switch order {
	case SortTitle:
		slices.SortStableFunc(items, func(a, b feed.Item) int {
			return strings.Compare(strings.ToLower(a.CleanTitle), strings.ToLower(b.CleanTitle))
		})
	case SortCreator:
		slices.SortStableFunc(items, func(a, b feed.Item) int {
			return strings.Compare(strings.ToLower(a.Creator), strings.ToLower(b.Creator))
		})
	case SortShuffle:
		rand.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	default:
		slices.SortStableFunc(items, func(a, b feed.Item) int {
			return b.Date.Compare(a.Date)
		})
	}
}
