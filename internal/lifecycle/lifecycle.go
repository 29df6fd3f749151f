// Package lifecycle runs the process's jobs and stops them on SIGINT or SIGTERM.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of work that runs until it finishes or its context is cancelled.
type Job interface {
	// Run does the work. It must return promptly once ctx is done.
	Run(ctx context.Context) error
	// Close releases what Run used. It is called once, after every job has returned.
	Close()
}

// FuncJob adapts a run/close function pair into the Job interface.
// A nil CloseFn is a no-op.
type FuncJob struct {
	RunFn   func(ctx context.Context) error
	CloseFn func()
}

// Run calls the underlying run function.
func (f *FuncJob) Run(ctx context.Context) error { return f.RunFn(ctx) }

// Close calls the underlying close function.
func (f *FuncJob) Close() {
	if f.CloseFn != nil {
		f.CloseFn()
	}
}

// Lifecycle runs named jobs concurrently and closes them in reverse order.
type Lifecycle struct {
	logger  *zap.Logger
	signals []os.Signal
	jobs    []namedJob
	mu      sync.Mutex
}

type namedJob struct {
	name string
	job  Job
}

// New creates a Lifecycle that cancels its jobs on SIGINT or SIGTERM.
// A nil logger is replaced by a no-op logger.
func New(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{
		logger:  logger,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Add registers a named job. Jobs are closed in the reverse of the order they were added.
//
// Precondition: name must be non-empty; job must be non-nil.
func (l *Lifecycle) Add(name string, job Job) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs = append(l.jobs, namedJob{name: name, job: job})
}

// Run starts every job and waits for all of them to return. A signal, the
// cancellation of ctx, or the failure of any job cancels the others.
//
// Postcondition: every job has returned and been closed. The error joins
// every job failure; a job that returns only because it was cancelled
// contributes its context error.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, l.signals...)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	jobs := append([]namedJob(nil), l.jobs...)
	l.mu.Unlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, nj := range jobs {
		nj := nj
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("starting job", zap.String("job", nj.name))
			jobStart := time.Now()
			if err := nj.job.Run(ctx); err != nil {
				l.logger.Error("job failed",
					zap.String("job", nj.name),
					zap.Error(err),
					zap.Duration("elapsed", time.Since(jobStart)),
				)
				mu.Lock()
				errs = append(errs, fmt.Errorf("job %s: %w", nj.name, err))
				mu.Unlock()
				cancel()
				return
			}
			l.logger.Info("job finished",
				zap.String("job", nj.name),
				zap.Duration("elapsed", time.Since(jobStart)),
			)
		}()
	}
	wg.Wait()

	l.close(jobs)
	l.logger.Info("lifecycle complete", zap.Duration("total", time.Since(start)))
	return errors.Join(errs...)
}

func (l *Lifecycle) close(jobs []namedJob) {
	for i := len(jobs) - 1; i >= 0; i-- {
		nj := jobs[i]
		nj.job.Close()
		l.logger.Debug("job closed", zap.String("job", nj.name))
	}
}
