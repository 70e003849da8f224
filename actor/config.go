package actor

// Config holds the recognised configuration options. Options are read
// once, at System construction.
type Config struct {
	// Workers is the number of scheduler worker threads.
	Workers int `json:"workers"`

	// MaxThroughput is the number of envelopes a single Resume call
	// processes before yielding.
	MaxThroughput int `json:"max-throughput"`

	// AffinityWorkerCores is the core-set string for worker threads.
	AffinityWorkerCores string `json:"affinity.worker-cores"`
	// AffinityDetachedCores is the core-set string for detached-actor
	// threads.
	AffinityDetachedCores string `json:"affinity.detached-cores"`
	// AffinityBlockingCores is the core-set string for blocking-actor
	// threads.
	AffinityBlockingCores string `json:"affinity.blocking-cores"`
	// AffinityOtherCores is the core-set string for miscellaneous threads.
	AffinityOtherCores string `json:"affinity.other-cores"`

	// MaxActors caps the number of simultaneously live actors a System
	// will admit. Zero means unbounded. Spawn blocks until a slot frees up
	// (an actor terminates) once the cap is reached.
	MaxActors int64 `json:"max-actors"`
}

// DefaultConfig returns a Config with sensible defaults: one worker per
// the mandated fallback of a single-threaded host, the default quantum,
// and no affinity configured.
func DefaultConfig() Config {
	return Config{
		Workers:       1,
		MaxThroughput: DefaultMaxThroughput,
	}
}

// assigner builds the round-robin core assigner for class, parsing the
// matching core-set string. A parse error is reported to warn (never
// fatal: the whole configuration is ignored, with a warning) and results
// in no affinity being configured for that class.
func (c Config) assigner(class ThreadClass, warn func(class ThreadClass, err error)) *Assigner {
	var s string
	switch class {
	case ThreadClassWorker:
		s = c.AffinityWorkerCores
	case ThreadClassDetached:
		s = c.AffinityDetachedCores
	case ThreadClassBlocking:
		s = c.AffinityBlockingCores
	case ThreadClassOther:
		s = c.AffinityOtherCores
	}
	if s == "" {
		return NewAssigner(nil)
	}
	groups, err := ParseCoreSets(s)
	if err != nil {
		if warn != nil {
			warn(class, err)
		}
		return NewAssigner(nil)
	}
	return NewAssigner(groups)
}
