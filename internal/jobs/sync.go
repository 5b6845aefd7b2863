package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
)

// RealmRefresher refreshes realm metadata
type RealmRefresher interface {
	RefreshRealms(ctx context.Context) (*model.RealmRefreshResult, error)
}

// OwnerRefresher refreshes realm owners
type OwnerRefresher interface {
	RefreshOwners(ctx context.Context) (*model.OwnerRefreshResult, error)
}

// SyncJob runs one refresh on an interval
type SyncJob struct {
	name     model.SyncJob
	run      func(ctx context.Context) (string, error)
	interval time.Duration
	timeout  time.Duration
	delay    time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// Option tweaks a SyncJob
type Option func(*SyncJob)

// WithTimeout bounds a single run
func WithTimeout(d time.Duration) Option {
	return func(j *SyncJob) { j.timeout = d }
}

// WithInitialDelay runs the first refresh after d instead of waiting a full
// interval. Zero disables the startup run.
func WithInitialDelay(d time.Duration) Option {
	return func(j *SyncJob) { j.delay = d }
}

// NewRealmSyncJob schedules the realm metadata refresh
func NewRealmSyncJob(svc RealmRefresher, interval time.Duration, opts ...Option) *SyncJob {
	return newSyncJob(model.SyncJobRealms, interval, func(ctx context.Context) (string, error) {
		res, err := svc.RefreshRealms(ctx)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	}, opts)
}

// NewOwnerSyncJob schedules the on-chain owner refresh
func NewOwnerSyncJob(svc OwnerRefresher, interval time.Duration, opts ...Option) *SyncJob {
	return newSyncJob(model.SyncJobOwners, interval, func(ctx context.Context) (string, error) {
		res, err := svc.RefreshOwners(ctx)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	}, opts)
}

func newSyncJob(name model.SyncJob, interval time.Duration, run func(context.Context) (string, error), opts []Option) *SyncJob {
	if interval <= 0 {
		interval = time.Hour
	}
	j := &SyncJob{
		name:     name,
		run:      run,
		interval: interval,
		timeout:  30 * time.Minute,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Name returns the refresh this job runs
func (j *SyncJob) Name() model.SyncJob {
	return j.name
}

// Start begins the schedule. Calling Start twice is a no-op.
func (j *SyncJob) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	stop := make(chan struct{})
	j.stopCh = stop
	j.mu.Unlock()

	j.wg.Add(1)
	go j.loop(stop)
	slog.Info("sync job started", slog.String("job", string(j.name)), slog.Duration("interval", j.interval))
}

// Stop cancels any in-progress run and waits for the loop to exit
func (j *SyncJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	stop := j.stopCh
	j.mu.Unlock()

	close(stop)
	j.wg.Wait()
	slog.Info("sync job stopped", slog.String("job", string(j.name)))
}

// IsRunning reports whether the schedule is active
func (j *SyncJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *SyncJob) loop(stop <-chan struct{}) {
	defer j.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
			j.tick(ctx)
		case <-stop:
			return
		}
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.tick(ctx)
		case <-stop:
			return
		}
	}
}

func (j *SyncJob) tick(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()

	start := time.Now()
	err := j.RunOnce(ctx)
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		slog.Info("sync job skipped, refresh already running", slog.String("job", string(j.name)))
	case err != nil:
		slog.Error("sync job failed", slog.String("job", string(j.name)), slog.Any("error", err))
	default:
		slog.Info("sync job finished", slog.String("job", string(j.name)), slog.Duration("took", time.Since(start)))
	}
}

// RunOnce runs the refresh a single time
func (j *SyncJob) RunOnce(ctx context.Context) error {
	msg, err := j.run(ctx)
	if err != nil {
		return err
	}
	slog.Debug("sync job result", slog.String("job", string(j.name)), slog.String("message", msg))
	return nil
}
