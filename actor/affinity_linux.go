//go:build linux

package actor

import "golang.org/x/sys/unix"

// applyAffinity pins the calling OS thread to the cores in group. The
// caller must have already called runtime.LockOSThread. Best-effort: a
// failure is returned to the caller to log, never panics.
func applyAffinity(group CoreGroup) error {
	var set unix.CPUSet
	set.Zero()
	for core := range group {
		set.Set(core)
	}
	return unix.SchedSetaffinity(0, &set)
}
