package actor

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// CoreGroup is one `<...>` group from a core-set string: the set of OS
// core indices it names.
type CoreGroup map[int]struct{}

// ParseCoreSets parses a core-set string: a sequence of groups
// `<g1><g2>...`, each group a comma-separated list of non-negative
// integers or closed ranges `lo-hi`, whitespace permitted within a
// group. Any syntax error — an empty group, unmatched brackets, a
// negative value, or a non-numeric token — invalidates the whole
// string: ParseCoreSets returns a non-nil error and the caller should
// fall back to "no affinity configured".
func ParseCoreSets(s string) ([]CoreGroup, error) {
	var groups []CoreGroup
	rest := s
	for {
		trimmed := strings.TrimSpace(rest)
		if trimmed == "" {
			break
		}
		if rest[0] != '<' {
			return nil, fmt.Errorf("affinity: expected '<' before %q", rest)
		}
		close := strings.IndexByte(rest, '>')
		if close < 0 {
			return nil, fmt.Errorf("affinity: unmatched '<' in %q", rest)
		}
		if nextOpen := strings.IndexByte(rest[1:], '<'); nextOpen >= 0 && nextOpen+1 < close {
			return nil, fmt.Errorf("affinity: unmatched '<' in %q", rest)
		}
		body := rest[1:close]
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("affinity: empty group in %q", rest)
		}
		group, err := parseCoreGroup(body)
		if err != nil {
			return nil, err
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
		rest = rest[close+1:]
	}
	return groups, nil
}

func parseCoreGroup(body string) (CoreGroup, error) {
	group := make(CoreGroup)
	for _, field := range strings.Split(body, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("affinity: empty element in group %q", body)
		}
		if dash := strings.IndexByte(field, '-'); dash > 0 && dash < len(field)-1 {
			lo, err := parseCoreNum(field[:dash])
			if err != nil {
				return nil, err
			}
			hi, err := parseCoreNum(field[dash+1:])
			if err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, fmt.Errorf("affinity: invalid range %q", field)
			}
			for k := lo; k <= hi; k++ {
				group[k] = struct{}{}
			}
			continue
		}
		n, err := parseCoreNum(field)
		if err != nil {
			return nil, err
		}
		group[n] = struct{}{}
	}
	return group, nil
}

func parseCoreNum(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("affinity: %q is not a number", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("affinity: %q is negative", s)
	}
	return n, nil
}

// ThreadClass names a category of OS threads eligible for a distinct
// affinity configuration.
type ThreadClass uint8

const (
	ThreadClassWorker ThreadClass = iota
	ThreadClassDetached
	ThreadClassBlocking
	ThreadClassOther
)

// String renders the thread class the way it appears in Config's field
// names (e.g. "worker" for AffinityWorkerCores), for logging.
func (c ThreadClass) String() string {
	switch c {
	case ThreadClassWorker:
		return "worker"
	case ThreadClassDetached:
		return "detached"
	case ThreadClassBlocking:
		return "blocking"
	case ThreadClassOther:
		return "other"
	default:
		return "unknown"
	}
}

// Assigner hands out core groups to threads round-robin, per thread
// class, via an atomic counter.
type Assigner struct {
	groups  []CoreGroup
	counter atomic.Uint64
}

// NewAssigner builds an assigner over groups. A nil/empty groups slice
// means "no affinity configured"; Next always returns (nil, false) in
// that case.
func NewAssigner(groups []CoreGroup) *Assigner {
	return &Assigner{groups: groups}
}

// Next returns the next core group in round-robin order.
func (a *Assigner) Next() (CoreGroup, bool) {
	if len(a.groups) == 0 {
		return nil, false
	}
	i := a.counter.Add(1) - 1
	return a.groups[int(i)%len(a.groups)], true
}
