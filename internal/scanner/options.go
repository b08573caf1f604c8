package scanner

import "runtime"

// Options configures scanner behavior.
type Options struct {
	// ShowHidden includes hidden entries (names starting with a dot).
	ShowHidden bool
	// FollowSymlinks descends into symlinked directories. Off by
	// default: symlinks are recorded as leaf entries and never
	// traversed, so cycles cannot double-count.
	FollowSymlinks bool
	// ExcludePatterns is a list of entry names to skip.
	ExcludePatterns []string
	// Exclude, when set, skips any entry whose full path it reports
	// true for. Checked after ExcludePatterns.
	Exclude func(path string) bool
	// MinSize drops files smaller than this many bytes from the tree.
	MinSize int64
	// Concurrency bounds the number of directory subtrees scanned in
	// parallel (0 = auto: 3x GOMAXPROCS).
	Concurrency int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		ShowHidden: true,
	}
}

// concurrency resolves the effective worker pool size.
func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.GOMAXPROCS(0) * 3
}
