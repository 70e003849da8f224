//go:build !linux

package actor

// applyAffinity is a no-op on platforms without a SchedSetaffinity
// syscall exposed through golang.org/x/sys/unix.
func applyAffinity(group CoreGroup) error {
	return nil
}
