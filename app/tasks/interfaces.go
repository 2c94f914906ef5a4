package tasks

// TaskSchedulerInterface is what the HTTP API needs from the scheduler.
//
//	scheduler := NewScheduler(pipeline, articleRepo, configCache, httpClient, extractor)
//	scheduler.Start()
//	defer scheduler.Stop()
//	id, err := scheduler.EnqueueAggregate()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueAggregate() (string, error)
	EnqueueRecategorize() (string, error)
}
