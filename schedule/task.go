package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const DefaultTick = time.Second

type Task func(ctx context.Context) error

type Scheduler struct {
	// Tick is how often due jobs are looked for.
	Tick   time.Duration
	Logger *slog.Logger

	jobs []*Job
	mu   sync.RWMutex
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		Tick:   DefaultTick,
		Logger: logger,
		jobs:   make([]*Job, 0),
	}
}

func (scheduler *Scheduler) AddJob(job *Job) error {
	if err := job.validate(); err != nil {
		return fmt.Errorf("invalid job %q: %w", job.name, err)
	}

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.jobs = append(scheduler.jobs, job)
	return nil
}

type Job struct {
	name          string
	tasks         []Task
	interval      time.Duration
	timeout       time.Duration
	nextExecuteAt time.Time
	running       bool
	mu            sync.Mutex
}

func NewJob(name string) *Job {
	return &Job{
		name:  name,
		tasks: make([]Task, 0),
	}
}

func (job *Job) WithTasks(tasks ...Task) *Job {
	job.tasks = tasks
	return job
}

func (job *Job) WithInterval(interval time.Duration) *Job {
	job.interval = interval
	return job
}

func (job *Job) WithExecuteAt(executeAt time.Time) *Job {
	job.nextExecuteAt = executeAt
	return job
}

func (job *Job) WithTimeout(timeout time.Duration) *Job {
	job.timeout = timeout
	return job
}

func (job *Job) AddTask(task Task) {
	job.tasks = append(job.tasks, task)
}

func (job *Job) validate() error {
	if job.interval <= 0 {
		return fmt.Errorf("job interval must be greater than 0")
	}
	if len(job.tasks) == 0 {
		return fmt.Errorf("job must have at least one task")
	}
	if job.nextExecuteAt.IsZero() {
		job.nextExecuteAt = time.Now().Add(job.interval)
	}
	return nil
}

// Run executes due jobs until ctx is done. A job never overlaps with its
// own previous run.
func (scheduler *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(scheduler.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			{
				scheduler.mu.RLock()
				jobs := make([]*Job, len(scheduler.jobs))
				copy(jobs, scheduler.jobs)
				scheduler.mu.RUnlock()

				now := time.Now()
				for _, job := range jobs {
					if job.claim(now) {
						go scheduler.executeJob(ctx, job)
					}
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (job *Job) claim(now time.Time) bool {
	job.mu.Lock()
	defer job.mu.Unlock()

	if job.running || job.nextExecuteAt.After(now) {
		return false
	}
	job.running = true
	job.nextExecuteAt = now.Add(job.interval)
	return true
}

func (job *Job) release() {
	job.mu.Lock()
	defer job.mu.Unlock()
	job.running = false
}

func (scheduler *Scheduler) executeJob(ctx context.Context, job *Job) {
	defer job.release()

	for _, task := range job.tasks {
		if err := scheduler.executeTask(ctx, task, job.timeout); err != nil {
			scheduler.Logger.Error("task execution failed", "job", job.name, "error", err)
		}
	}
}

func (scheduler *Scheduler) executeTask(ctx context.Context, task Task, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- scheduler.doExecuteTask(ctx, task)
		}()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return fmt.Errorf("task execution timeout after %v", timeout)
		}
	}

	return scheduler.doExecuteTask(ctx, task)
}

func (scheduler *Scheduler) doExecuteTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()

	return task(ctx)
}
