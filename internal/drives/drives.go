// Package drives enumerates mounted volumes visible to the current user
// together with their total and free capacity. Enumeration is best
// effort: a volume whose capacity cannot be queried is still reported,
// annotated with the error, so one bad mount never hides the rest.
package drives

// Volume describes one mount point or logical drive.
type Volume struct {
	// Path is the mount point (or drive root on Windows).
	Path string
	// Filesystem is the filesystem type when known ("ext4", "NTFS", ...).
	Filesystem string
	// Total is the volume capacity in bytes.
	Total uint64
	// Free is the capacity in bytes available to the current user.
	Free uint64
	// Err is set when capacity for this volume could not be queried.
	Err error
}

// List returns the volumes visible to the current user. The slice is
// never nil on success; an error is returned only when enumeration
// itself is impossible.
func List() ([]Volume, error) {
	return list()
}
