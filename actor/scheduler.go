package actor

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxThroughput is the default per-actor fairness budget: the
// number of envelopes a single Resume call processes before yielding.
const DefaultMaxThroughput = 50

// Scheduler is a shared-queue pool of worker goroutines consuming
// Resumables. Submission is non-blocking and thread-safe; workers pull
// from an unbounded queue guarded by a mutex, signalled through a
// buffered wake channel.
type Scheduler struct {
	workers       int
	maxThroughput int
	logger        *zap.Logger
	profiler      Profiler

	// workerAffinity and detachedAffinity hand out core groups to, resp.,
	// worker-pool goroutines (pinned once at Start) and RunDetached
	// goroutines (pinned once at launch). Nil means unconfigured: no
	// LockOSThread, no SchedSetaffinity call.
	workerAffinity   *Assigner
	detachedAffinity *Assigner

	mu      sync.Mutex
	queue   []Resumable
	stopped bool
	wake    chan struct{}

	eg     *errgroup.Group
	egCtx  context.Context
	cancel context.CancelFunc

	detachedWG sync.WaitGroup

	workerErrMu sync.Mutex
	workerErr   error
}

// SchedulerOption configures a Scheduler at construction time.
type SchedulerOption func(*Scheduler)

// WithMaxThroughput overrides DefaultMaxThroughput.
func WithMaxThroughput(n int) SchedulerOption {
	return func(s *Scheduler) { s.maxThroughput = n }
}

// WithSchedulerLogger attaches a zap logger; a nop logger is used if this
// is never called.
func WithSchedulerLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithProfiler installs the optional profiler hook. The core invokes it
// unconditionally once installed.
func WithProfiler(p Profiler) SchedulerOption {
	return func(s *Scheduler) { s.profiler = p }
}

// WithWorkerAffinity pins each worker-pool goroutine to a core group drawn
// round-robin from assigner, once, before it enters its run loop.
func WithWorkerAffinity(assigner *Assigner) SchedulerOption {
	return func(s *Scheduler) { s.workerAffinity = assigner }
}

// WithDetachedAffinity pins each RunDetached goroutine to a core group
// drawn round-robin from assigner, once, before it enters its run loop.
func WithDetachedAffinity(assigner *Assigner) SchedulerOption {
	return func(s *Scheduler) { s.detachedAffinity = assigner }
}

// pinCurrentThread locks the calling goroutine to its OS thread and applies
// the next core group from assigner, if one is configured and parsed to a
// non-empty set of groups. Best-effort: a SchedSetaffinity failure is
// logged, never fatal, and the goroutine keeps running unpinned.
func (s *Scheduler) pinCurrentThread(assigner *Assigner, class ThreadClass) {
	if assigner == nil {
		return
	}
	group, ok := assigner.Next()
	if !ok {
		return
	}
	runtime.LockOSThread()
	if err := applyAffinity(group); err != nil {
		s.logger.Warn("failed to apply thread affinity",
			zap.Stringer("class", class), zap.Error(err))
	}
}

// NewScheduler returns a scheduler with the given worker count. Workers
// are not started until Start is called.
func NewScheduler(workers int, opts ...SchedulerOption) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	s := &Scheduler{
		workers:       workers,
		maxThroughput: DefaultMaxThroughput,
		logger:        zap.NewNop(),
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the worker pool. Safe to call once.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.egCtx = ctx
	s.cancel = cancel
	eg, egCtx := errgroup.WithContext(ctx)
	s.eg = eg
	s.egCtx = egCtx
	for i := 0; i < s.workers; i++ {
		eg.Go(func() error {
			s.pinCurrentThread(s.workerAffinity, ThreadClassWorker)
			return s.runWorker(ctx)
		})
	}
	s.logger.Info("scheduler started", zap.Int("workers", s.workers))
}

// submit enqueues a resumable for the worker pool, waking one worker if
// needed. Non-blocking.
func (s *Scheduler) submit(r Resumable) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, r)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// EnqueueResumable is the external-facing equivalent of submit.
func (s *Scheduler) EnqueueResumable(r Resumable) {
	s.submit(r)
}

func (s *Scheduler) dequeue(ctx context.Context) (Resumable, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			r := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return r, true
		}
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return nil, false
		}
		select {
		case <-s.wake:
			continue
		case <-ctx.Done():
			return nil, false
		}
	}
}

// runWorker wraps workerLoop with panic recovery: a worker goroutine that
// panics on something other than a recovered actor invocation (a bug in
// the scheduler itself) restarts instead of silently shrinking the pool,
// and its error is recorded for Stop to report.
func (s *Scheduler) runWorker(ctx context.Context) error {
	for {
		stopped := func() (stopped bool) {
			defer func() {
				if r := recover(); r != nil {
					s.workerErrMu.Lock()
					s.workerErr = multierr.Append(s.workerErr, errors.Errorf("worker panic: %v", r))
					s.workerErrMu.Unlock()
				}
			}()
			s.workerLoop(ctx)
			return true
		}()
		if stopped {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

func (s *Scheduler) workerLoop(ctx context.Context) {
	for {
		r, ok := s.dequeue(ctx)
		if !ok {
			return
		}
		if s.profiler != nil {
			s.profiler.BeforeProcessing(r)
		}
		result := r.Resume(s, s.maxThroughput)
		if s.profiler != nil {
			s.profiler.AfterProcessing(r)
		}
		switch result {
		case ResumeLater:
			s.submit(r)
		case ResumeAwaitingMessage:
			// The resumable will be re-submitted by Body.Enqueue the
			// next time a push observes the blocked state.
		case ResumeDone:
			// Drop the reference; the scheduler never held more than
			// this one pointer's worth of ownership.
		}
	}
}

// detachedResumable is implemented by Resumables that can be parked
// between Resume calls instead of busy-looping or being handed to the
// shared worker pool.
type detachedResumable interface {
	Resumable
	wakeChan() <-chan struct{}
}

// RunDetached runs r on a dedicated goroutine, bypassing the worker pool,
// with an unbounded quantum. When r goes idle (ResumeAwaitingMessage),
// the goroutine parks on r's wake channel rather than spinning or
// resubmitting r to the shared pool, which would let two goroutines call
// Resume on the same resumable concurrently.
func (s *Scheduler) RunDetached(r Resumable) {
	s.detachedWG.Add(1)
	go func() {
		defer s.detachedWG.Done()
		s.pinCurrentThread(s.detachedAffinity, ThreadClassDetached)
		dr, parkable := r.(detachedResumable)
		for {
			switch r.Resume(s, -1) {
			case ResumeDone:
				return
			case ResumeAwaitingMessage:
				if parkable {
					<-dr.wakeChan()
				}
			case ResumeLater:
				// A push raced the empty check; retry immediately.
			}
		}
	}()
}

// Stop signals all workers to exit once their current Resume call
// returns, and waits for the worker pool to drain. It does not wait for
// detached actors' goroutines (see WaitDetached). It does not forcibly
// interrupt an in-flight Resume. The returned error aggregates every
// worker panic recorded since Start, via multierr; nil means no worker
// ever panicked.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.eg != nil {
		_ = s.eg.Wait()
	}
	s.workerErrMu.Lock()
	err := s.workerErr
	s.workerErrMu.Unlock()
	if err != nil {
		s.logger.Error("scheduler stopped with worker errors", zap.Error(err))
	} else {
		s.logger.Info("scheduler stopped")
	}
	return err
}

// WaitDetached blocks until every actor spawned via RunDetached has
// terminated. Intended for tests and graceful-shutdown paths that must
// not return before detached actors finish.
func (s *Scheduler) WaitDetached() {
	s.detachedWG.Wait()
}
