package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startPool(t *testing.T, config PoolConfig) *Pool {
	t.Helper()
	pool := NewPool(config, zap.NewNop())
	require.NoError(t, pool.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, pool.Stop(ctx))
	})
	return pool
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 2, QueueSize: 8, JobTimeout: time.Second})

	var wg sync.WaitGroup
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		job := NewJob(JobKindAccrual, nil, 0, func(ctx context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		})
		require.NoError(t, pool.Submit(job))
	}
	wg.Wait()
	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_RetriesFailedJobs(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 1, QueueSize: 1, JobTimeout: time.Second, RetryDelay: time.Millisecond})

	done := make(chan *Job, 1)
	pool.OnComplete = func(job *Job, _ time.Duration) {
		if job.Status == JobStatusSuccess || !job.ShouldRetry() {
			done <- job
		}
	}

	var attempts atomic.Int32
	job := NewJob(JobKindProvisioning, nil, 2, func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("database unavailable")
		}
		return nil
	})
	require.NoError(t, pool.Submit(job))

	finished := <-done
	assert.Equal(t, JobStatusSuccess, finished.Status)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, 2, finished.RetryCount)
}

func TestPool_GivesUpAfterMaxRetries(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 1, QueueSize: 1, JobTimeout: time.Second, RetryDelay: time.Millisecond})

	done := make(chan *Job, 1)
	pool.OnComplete = func(job *Job, _ time.Duration) {
		if !job.ShouldRetry() {
			done <- job
		}
	}

	job := NewJob(JobKindHookRetry, nil, 1, func(ctx context.Context) error {
		return errors.New("endpoint down")
	})
	require.NoError(t, pool.Submit(job))

	finished := <-done
	assert.Equal(t, JobStatusFailed, finished.Status)
	assert.Equal(t, "endpoint down", finished.Error)
	assert.Equal(t, 1, finished.RetryCount)
}

func TestPool_RecoversPanics(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 1, QueueSize: 1, JobTimeout: time.Second})

	done := make(chan *Job, 1)
	pool.OnComplete = func(job *Job, _ time.Duration) { done <- job }

	require.NoError(t, pool.Submit(NewJob(JobKindAccrual, nil, 0, func(ctx context.Context) error {
		panic("nil loan product")
	})))

	finished := <-done
	assert.Equal(t, JobStatusFailed, finished.Status)
	assert.Contains(t, finished.Error, "nil loan product")
}

func TestPool_JobTimeoutCancelsContext(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 1, QueueSize: 1, JobTimeout: 10 * time.Millisecond})

	done := make(chan *Job, 1)
	pool.OnComplete = func(job *Job, _ time.Duration) { done <- job }

	require.NoError(t, pool.Submit(NewJob(JobKindAccrual, nil, 0, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))

	finished := <-done
	assert.Equal(t, JobStatusFailed, finished.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), finished.Error)
}

func TestPool_SubmitErrors(t *testing.T) {
	t.Run("not running", func(t *testing.T) {
		pool := NewPool(DefaultPoolConfig(), zap.NewNop())
		err := pool.Submit(NewJob(JobKindAccrual, nil, 0, func(context.Context) error { return nil }))
		assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	})

	t.Run("queue full", func(t *testing.T) {
		pool := startPool(t, PoolConfig{Workers: 1, QueueSize: 1, JobTimeout: time.Second})

		release := make(chan struct{})
		started := make(chan struct{})
		blocker := NewJob(JobKindAccrual, nil, 0, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
		require.NoError(t, pool.Submit(blocker))
		<-started

		noop := func(context.Context) error { return nil }
		require.NoError(t, pool.Submit(NewJob(JobKindAccrual, nil, 0, noop)))
		err := pool.Submit(NewJob(JobKindAccrual, nil, 0, noop))
		assert.ErrorIs(t, err, ErrJobQueueFull)
		close(release)
	})
}

func TestPool_StopIsIdempotent(t *testing.T) {
	pool := NewPool(PoolConfig{Workers: 3}, zap.NewNop())
	require.NoError(t, pool.Start(context.Background()))
	require.NoError(t, pool.Start(context.Background()))
	require.NoError(t, pool.Stop(context.Background()))
	require.NoError(t, pool.Stop(context.Background()))
}

type stubTenants struct {
	ids []uuid.UUID
	err error
}

func (s stubTenants) FindTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

func TestCron_TriggerFansOutPerTenant(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 2, QueueSize: 8, JobTimeout: time.Second})
	tenants := stubTenants{ids: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}}
	c := NewCron(CronConfig{}, pool, tenants, zap.NewNop())

	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := map[uuid.UUID]bool{}
	wg.Add(len(tenants.ids))
	require.NoError(t, c.Register(Task{
		Kind:      JobKindAccrual,
		PerTenant: true,
		Run: func(ctx context.Context, tenantID *uuid.UUID) error {
			defer wg.Done()
			mu.Lock()
			seen[*tenantID] = true
			mu.Unlock()
			return nil
		},
	}))

	n, err := c.Trigger(context.Background(), JobKindAccrual)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	wg.Wait()

	for _, id := range tenants.ids {
		assert.True(t, seen[id])
	}
}

func TestCron_GlobalTaskRunsOnce(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 1, QueueSize: 2, JobTimeout: time.Second})
	c := NewCron(CronConfig{}, pool, stubTenants{err: errors.New("not called")}, zap.NewNop())

	done := make(chan *uuid.UUID, 1)
	require.NoError(t, c.Register(Task{
		Kind: JobKindHookRetry,
		Run: func(ctx context.Context, tenantID *uuid.UUID) error {
			done <- tenantID
			return nil
		},
	}))

	n, err := c.Trigger(context.Background(), JobKindHookRetry)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Nil(t, <-done)
}

func TestCron_Errors(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 1})

	t.Run("invalid schedule", func(t *testing.T) {
		c := NewCron(CronConfig{}, pool, stubTenants{}, zap.NewNop())
		err := c.Register(Task{Kind: JobKindAccrual, Spec: "every tuesday", Run: func(context.Context, *uuid.UUID) error { return nil }})
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})

	t.Run("unknown task", func(t *testing.T) {
		c := NewCron(CronConfig{}, pool, stubTenants{}, zap.NewNop())
		_, err := c.Trigger(context.Background(), JobKindProvisioning)
		assert.Error(t, err)
	})

	t.Run("tenant listing fails", func(t *testing.T) {
		c := NewCron(CronConfig{}, pool, stubTenants{err: errors.New("db down")}, zap.NewNop())
		require.NoError(t, c.Register(Task{Kind: JobKindAccrual, PerTenant: true, Run: func(context.Context, *uuid.UUID) error { return nil }}))
		_, err := c.Trigger(context.Background(), JobKindAccrual)
		assert.ErrorContains(t, err, "db down")
	})
}

func TestCron_StartStopReleasesGoroutines(t *testing.T) {
	pool := startPool(t, PoolConfig{Workers: 1})
	c := NewCron(CronConfig{}, pool, stubTenants{}, zap.NewNop())
	require.NoError(t, c.Register(Task{Kind: JobKindHookRetry, Spec: "@every 1h", Run: func(context.Context, *uuid.UUID) error { return nil }}))

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Stop(context.Background()))
	require.NoError(t, c.Stop(context.Background()))
}
