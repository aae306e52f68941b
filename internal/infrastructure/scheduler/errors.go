package scheduler

import "errors"

var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	// ErrJobQueueFull means every worker is busy and the backlog is at capacity
	ErrJobQueueFull    = errors.New("job queue is full")
	ErrInvalidSchedule = errors.New("invalid cron schedule")
)
