package tasks

import (
	"context"
	"log/slog"

	"github.com/litfeed/litfeed/app/feed"
	"github.com/litfeed/litfeed/app/sources"
)

// FeedRefresher is the slice of the reader a refresh task needs.
type FeedRefresher interface {
	FetchAll(ctx context.Context, srcs []sources.Source)
	Items() []feed.Item
}

// RefreshFeedsTask triggers one full fetch of the configured sources. The
// reader absorbs per-source failures itself, so executing never fails for a
// dead journal; only an empty source list is a no-op.
type RefreshFeedsTask struct {
	Task
	reader  FeedRefresher
	sources []sources.Source
}

func NewRefreshFeedsTask(rdr FeedRefresher, srcs []sources.Source) *RefreshFeedsTask {
	return &RefreshFeedsTask{
		Task:    NewTask(TaskTypeRefreshFeeds),
		reader:  rdr,
		sources: srcs,
	}
}

func (t *RefreshFeedsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if len(t.sources) == 0 {
		slog.Debug("No sources configured, skipping refresh")
		return nil
	}

	t.reader.FetchAll(ctx, t.sources)

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"sources", len(t.sources),
		"items", len(t.reader.Items()))

	return nil
}
