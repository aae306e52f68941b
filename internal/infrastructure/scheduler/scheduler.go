package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobKind names the periodic batch a job belongs to
type JobKind string

const (
	JobKindAccrual      JobKind = "INTEREST_ACCRUAL"
	JobKindProvisioning JobKind = "LOAN_PROVISIONING"
	JobKindHookRetry    JobKind = "HOOK_REDELIVERY"
)

// Job is one unit of background work. TenantID is nil for jobs that span
// all tenants.
type Job struct {
	ID          uuid.UUID
	Kind        JobKind
	TenantID    *uuid.UUID
	Run         func(ctx context.Context) error
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewJob creates a pending job
func NewJob(kind JobKind, tenantID *uuid.UUID, maxRetries int, run func(ctx context.Context) error) *Job {
	return &Job{
		ID:         uuid.New(),
		Kind:       kind,
		TenantID:   tenantID,
		Run:        run,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

func (j *Job) start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

func (j *Job) complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

func (j *Job) fail(err error) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err.Error()
}

// ShouldRetry returns true if a failed job has attempts left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

func (j *Job) fields() []zap.Field {
	fields := []zap.Field{
		zap.String("job_id", j.ID.String()),
		zap.String("kind", string(j.Kind)),
	}
	if j.TenantID != nil {
		fields = append(fields, zap.String("tenant_id", j.TenantID.String()))
	}
	return fields
}

// PoolConfig holds worker pool configuration
type PoolConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	RetryDelay time.Duration
}

// DefaultPoolConfig returns default worker pool configuration
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:    4,
		QueueSize:  64,
		JobTimeout: 30 * time.Minute,
		RetryDelay: 30 * time.Second,
	}
}

// Pool runs submitted jobs on a fixed set of workers
type Pool struct {
	config PoolConfig
	logger *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool

	// OnComplete, when set, is called after every finished attempt
	OnComplete func(job *Job, duration time.Duration)
}

// NewPool creates a worker pool
func NewPool(config PoolConfig, logger *zap.Logger) *Pool {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultPoolConfig().QueueSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultPoolConfig().JobTimeout
	}
	return &Pool{
		config: config,
		logger: logger,
		jobs:   make(chan *Job, config.QueueSize),
	}
}

// Start launches the workers
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isRunning {
		return nil
	}
	p.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.logger.Info("Job scheduler started",
		zap.Int("workers", p.config.Workers),
		zap.Duration("job_timeout", p.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a job without blocking
func (p *Pool) Submit(job *Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case p.jobs <- job:
		p.logger.Debug("Job submitted", job.fields()...)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (p *Pool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			p.process(ctx, job, workerID)
		}
	}
}

func (p *Pool) process(ctx context.Context, job *Job, workerID int) {
	for {
		job.start()
		started := time.Now()

		err := p.runOnce(ctx, job)
		if err == nil {
			job.complete()
		} else {
			job.fail(err)
		}
		if p.OnComplete != nil {
			p.OnComplete(job, time.Since(started))
		}

		fields := append(job.fields(), zap.Int("worker_id", workerID), zap.Duration("duration", time.Since(started)))
		if err == nil {
			p.logger.Info("Job completed", fields...)
			return
		}
		p.logger.Error("Job failed", append(fields, zap.Error(err))...)

		if !job.ShouldRetry() {
			return
		}
		job.RetryCount++
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.config.RetryDelay):
		}
	}
}

func (p *Pool) runOnce(ctx context.Context, job *Job) (err error) {
	jobCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(jobCtx)
}
