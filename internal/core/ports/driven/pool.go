package driven

// WorkerPool runs jobs on a bounded set of workers.
type WorkerPool interface {
	// TrySubmit schedules a job for asynchronous execution. It never
	// blocks: when the pool is saturated it returns false and the job
	// is dropped.
	TrySubmit(job func()) bool
}
