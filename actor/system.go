package actor

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// System wires together a Scheduler, a node identity, and the running-
// actor registry backing the shutdown barrier.
type System struct {
	node      NodeID
	ids       idGenerator
	scheduler *Scheduler
	cfg       Config
	logger    *zap.Logger
	profiler  Profiler

	mu       sync.Mutex
	registry map[Address]*ControlBlock
	barrier  sync.WaitGroup

	clock Clock

	// admission bounds the number of simultaneously live actors when
	// cfg.MaxActors > 0; nil means unbounded.
	admission *semaphore.Weighted
}

// SystemOption configures a System at construction.
type SystemOption func(*System)

// WithLogger attaches a zap logger; a nop logger is used otherwise.
func WithLogger(l *zap.Logger) SystemOption {
	return func(s *System) { s.logger = l }
}

// WithSystemProfiler installs the optional profiler hook, shared between
// the system and its scheduler.
func WithSystemProfiler(p Profiler) SystemOption {
	return func(s *System) { s.profiler = p }
}

// WithClock attaches a Clock. Without this option, Context.Now() falls
// back to the wall-clock time.Now().
func WithClock(c Clock) SystemOption {
	return func(s *System) { s.clock = c }
}

// NewSystem constructs a System and its Scheduler from cfg, but does not
// start the scheduler (call Start).
func NewSystem(cfg Config, opts ...SystemOption) *System {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxThroughput < 1 {
		cfg.MaxThroughput = DefaultMaxThroughput
	}
	s := &System{
		node:     NewNodeID(),
		cfg:      cfg,
		logger:   zap.NewNop(),
		registry: make(map[Address]*ControlBlock),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.MaxActors > 0 {
		s.admission = semaphore.NewWeighted(cfg.MaxActors)
	}
	warnAffinity := func(class ThreadClass, err error) {
		s.logger.Warn("invalid affinity core-set string, running unpinned",
			zap.Stringer("class", class), zap.Error(err))
	}
	schedOpts := []SchedulerOption{
		WithMaxThroughput(cfg.MaxThroughput),
		WithSchedulerLogger(s.logger),
		WithWorkerAffinity(cfg.assigner(ThreadClassWorker, warnAffinity)),
		WithDetachedAffinity(cfg.assigner(ThreadClassDetached, warnAffinity)),
	}
	// Blocking and other threads are never pinned; their core-set strings
	// are parsed only so that a malformed one is reported.
	cfg.assigner(ThreadClassBlocking, warnAffinity)
	cfg.assigner(ThreadClassOther, warnAffinity)
	if s.profiler != nil {
		schedOpts = append(schedOpts, WithProfiler(s.profiler))
	}
	s.scheduler = NewScheduler(cfg.Workers, schedOpts...)
	return s
}

// Start launches the underlying scheduler's worker pool.
func (s *System) Start() {
	s.scheduler.Start()
}

// Scheduler returns the System's worker pool.
func (s *System) Scheduler() *Scheduler { return s.scheduler }

// NodeID returns this process's node identity.
func (s *System) NodeID() NodeID { return s.node }

// Clock returns the attached Clock, or nil if none was configured.
func (s *System) Clock() Clock { return s.clock }

// SpawnOptions configures a single Spawn call.
type SpawnOptions struct {
	Hidden   bool
	Detached bool
	Blocking bool
}

// Spawn creates a new actor from producer, registers it, and performs the
// resumable's new -> ready transition: a freshly spawned actor is always
// submitted to the scheduler (or given a detached goroutine) once, so
// that PreStart-observable state and any messages enqueued before spawn
// completes get a chance to run even if nothing ever unblocks the reader.
// If Config.MaxActors bounds the system, Spawn blocks until a slot frees
// up; use SpawnContext to bound that wait.
func (s *System) Spawn(producer func(*System, Address) Actor, opts SpawnOptions) *ControlBlock {
	control, _ := s.SpawnContext(context.Background(), producer, opts)
	return control
}

// SpawnContext is Spawn with a cancellable admission wait: it returns an
// error (and spawns nothing) if ctx is done before a slot becomes
// available.
func (s *System) SpawnContext(ctx context.Context, producer func(*System, Address) Actor, opts SpawnOptions) (*ControlBlock, error) {
	if s.admission != nil {
		if err := s.admission.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}
	addr := Address{ID: s.ids.next(), Node: s.node}
	control := newControlBlock(addr)
	user := producer(s, addr)
	body := newBody(control, user, s)

	if opts.Hidden {
		body.flags.Set(FlagHidden)
	}
	if opts.Detached {
		body.flags.Set(FlagDetached)
	}
	if opts.Blocking {
		body.flags.Set(FlagBlocking)
	}
	body.flags.Set(FlagInitialized)

	s.register(control, opts.Hidden)

	if pre, ok := user.(PreStarter); ok {
		pre.PreStart(&Context{self: body, sched: s.scheduler, sys: s})
	}

	if s.profiler != nil {
		s.profiler.AddActor(addr)
	}

	if opts.Detached {
		s.scheduler.RunDetached(body)
	} else {
		s.scheduler.submit(body)
	}

	return control, nil
}

func (s *System) register(control *ControlBlock, hidden bool) {
	s.mu.Lock()
	s.registry[control.Address()] = control
	s.mu.Unlock()
	control.Body().flags.Set(FlagRegistered)
	if !hidden {
		s.barrier.Add(1)
	}
}

// deregister removes addr from the registry and releases its slot in the
// shutdown barrier. Called exactly once, from Body.Cleanup.
func (s *System) deregister(addr Address) {
	s.mu.Lock()
	control, ok := s.registry[addr]
	delete(s.registry, addr)
	s.mu.Unlock()
	if !ok {
		return
	}
	if s.profiler != nil {
		s.profiler.RemoveActor(addr, nil)
	}
	if !control.Body().flags.Has(FlagHidden) {
		s.barrier.Done()
	}
	if s.admission != nil {
		s.admission.Release(1)
	}
}

// Lookup returns the control block registered at addr, if any.
func (s *System) Lookup(addr Address) (*ControlBlock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.registry[addr]
	return c, ok
}

// AwaitAllActorsDone blocks until every non-hidden registered actor has
// terminated, or ctx is done, whichever comes first.
func (s *System) AwaitAllActorsDone(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.barrier.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown waits for all non-hidden actors to finish (bounded by ctx),
// then stops the scheduler's worker pool.
func (s *System) Shutdown(ctx context.Context) error {
	waitErr := s.AwaitAllActorsDone(ctx)
	stopErr := s.scheduler.Stop()
	return multierr.Append(waitErr, stopErr)
}
