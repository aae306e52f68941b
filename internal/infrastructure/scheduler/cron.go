package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants periodic jobs fan out to
type TenantProvider interface {
	FindTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Task is a periodic batch. A per-tenant task is submitted once for every
// tenant; otherwise Run receives a nil tenant.
type Task struct {
	Kind      JobKind
	Spec      string
	PerTenant bool
	Run       func(ctx context.Context, tenantID *uuid.UUID) error
}

// CronConfig holds cron trigger configuration
type CronConfig struct {
	MaxRetries int
}

// Cron submits registered tasks to a Pool on their cron schedules
type Cron struct {
	config  CronConfig
	cron    *cron.Cron
	pool    *Pool
	tenants TenantProvider
	logger  *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	tasks     map[JobKind]Task
	isRunning bool
}

// NewCron creates a cron trigger feeding pool
func NewCron(config CronConfig, pool *Pool, tenants TenantProvider, logger *zap.Logger) *Cron {
	return &Cron{
		config:  config,
		cron:    cron.New(cron.WithLogger(cronLogger{logger.Sugar()})),
		pool:    pool,
		tenants: tenants,
		logger:  logger,
		tasks:   make(map[JobKind]Task),
	}
}

// Register adds a task. An empty spec registers the task for manual
// triggering only.
func (c *Cron) Register(task Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if task.Spec != "" {
		if _, err := c.cron.AddFunc(task.Spec, func() { c.fire(task) }); err != nil {
			return fmt.Errorf("%w %q for %s: %v", ErrInvalidSchedule, task.Spec, task.Kind, err)
		}
	}
	c.tasks[task.Kind] = task
	c.logger.Info("Periodic job registered",
		zap.String("kind", string(task.Kind)),
		zap.String("schedule", task.Spec),
		zap.Bool("per_tenant", task.PerTenant),
	)
	return nil
}

// Start begins firing scheduled tasks
func (c *Cron) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.isRunning = true
	c.cron.Start()
	c.logger.Info("Cron trigger started", zap.Int("tasks", len(c.tasks)))
	return nil
}

// Stop stops firing and waits for in-flight triggers to return
func (c *Cron) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.cancel()
	c.mu.Unlock()

	select {
	case <-c.cron.Stop().Done():
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger submits a registered task immediately and returns the number of
// jobs queued
func (c *Cron) Trigger(ctx context.Context, kind JobKind) (int, error) {
	c.mu.Lock()
	task, ok := c.tasks[kind]
	c.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("no periodic job registered for %s", kind)
	}
	return c.submit(ctx, task)
}

func (c *Cron) fire(task Task) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if _, err := c.submit(ctx, task); err != nil {
		c.logger.Error("Failed to trigger periodic job",
			zap.String("kind", string(task.Kind)),
			zap.Error(err),
		)
	}
}

func (c *Cron) submit(ctx context.Context, task Task) (int, error) {
	if !task.PerTenant {
		job := NewJob(task.Kind, nil, c.config.MaxRetries, func(ctx context.Context) error {
			return task.Run(ctx, nil)
		})
		if err := c.pool.Submit(job); err != nil {
			return 0, err
		}
		return 1, nil
	}

	tenantIDs, err := c.tenants.FindTenantIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tenants: %w", err)
	}

	submitted := 0
	for _, tenantID := range tenantIDs {
		tid := tenantID
		job := NewJob(task.Kind, &tid, c.config.MaxRetries, func(ctx context.Context) error {
			return task.Run(ctx, &tid)
		})
		if err := c.pool.Submit(job); err != nil {
			c.logger.Error("Failed to submit periodic job for tenant",
				zap.String("kind", string(task.Kind)),
				zap.String("tenant_id", tid.String()),
				zap.Error(err),
			)
			continue
		}
		submitted++
	}
	c.logger.Info("Periodic job triggered",
		zap.String("kind", string(task.Kind)),
		zap.Int("tenants", len(tenantIDs)),
		zap.Int("submitted", submitted),
	)
	return submitted, nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
