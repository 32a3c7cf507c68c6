package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/litfeed/litfeed/app/feed"
	"github.com/litfeed/litfeed/app/sources"
)

type fakeRefresher struct {
	fetchCalls atomic.Int64
	items      []feed.Item
}

func (f *fakeRefresher) FetchAll(ctx context.Context, srcs []sources.Source) {
	f.fetchCalls.Add(1)
}

func (f *fakeRefresher) Items() []feed.Item {
	return f.items
}

func TestRefreshFeedsTaskExecute(t *testing.T) {
	rdr := &fakeRefresher{}
	task := NewRefreshFeedsTask(rdr, sources.Defaults())

	if task.GetType() != TaskTypeRefreshFeeds {
		t.Errorf("Expected task type %s, got: %s", TaskTypeRefreshFeeds, task.GetType())
	}

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rdr.fetchCalls.Load() != 1 {
		t.Errorf("Expected 1 FetchAll call, got: %d", rdr.fetchCalls.Load())
	}
}

func TestRefreshFeedsTaskEmptySources(t *testing.T) {
	rdr := &fakeRefresher{}
	task := NewRefreshFeedsTask(rdr, nil)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error for empty sources, got: %v", err)
	}
	if rdr.fetchCalls.Load() != 0 {
		t.Errorf("Expected no FetchAll call for empty sources, got: %d", rdr.fetchCalls.Load())
	}
}

func TestRefreshFeedsTaskCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewRefreshFeedsTask(&fakeRefresher{}, sources.Defaults())
	if err := task.Execute(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestTaskRetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeRefreshFeeds)

	if task.ID == "" {
		t.Error("Expected non-empty task ID")
	}
	if !task.CanRetry() {
		t.Error("Expected fresh task to be retryable")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Errorf("Expected retries exhausted after %d increments", DefaultMaxRetries)
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got: %d", DefaultMaxRetries, task.GetRetryCount())
	}
}

func TestSchedulerEnqueueTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Scheduler{
		reader:      &fakeRefresher{},
		interval:    time.Hour,
		workerCount: 1,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 1),
	}

	if err := s.EnqueueTask(NewRefreshFeedsTask(s.reader, nil)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := s.EnqueueTask(NewRefreshFeedsTask(s.reader, nil)); err == nil {
		t.Error("Expected error when queue is full")
	}
}

type failingTask struct {
	Task
	executed chan struct{}
}

func (t *failingTask) Execute(ctx context.Context) error {
	select {
	case t.executed <- struct{}{}:
	default:
	}
	return fmt.Errorf("simulated task failure")
}

func TestSchedulerStopWithPendingRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		reader:      &fakeRefresher{},
		interval:    time.Hour,
		workerCount: 1,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 10),
	}
	s.Start()

	task := &failingTask{Task: NewTask(TaskTypeRefreshFeeds), executed: make(chan struct{}, 1)}
	if err := s.EnqueueTask(task); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	select {
	case <-task.executed:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the failing task to execute")
	}

	// Stopping while a retry is waiting must neither panic on the closed
	// queue nor wait out the retry delay.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected Stop to return promptly with a retry pending")
	}
}

func TestSchedulerRunsEnqueuedTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	rdr := &fakeRefresher{}
	s := &Scheduler{
		reader:      rdr,
		sources:     sources.Defaults(),
		interval:    time.Hour,
		workerCount: 1,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 10),
	}

	s.Start()

	deadline := time.After(2 * time.Second)
	for rdr.fetchCalls.Load() == 0 {
		select {
		case <-deadline:
			s.Stop()
			t.Fatal("Expected the startup refresh to run")
		case <-time.After(10 * time.Millisecond):
		}
	}

	s.Stop()
}
