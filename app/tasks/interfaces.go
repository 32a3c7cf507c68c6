package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background refresh processing, and
// by the API layer to trigger an on-demand refresh.
// Example usage:
//
//	scheduler := NewScheduler(reader, sources)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRefreshFeedsTask(reader, sources))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
