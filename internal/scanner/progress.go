package scanner

import "time"

// Progress reports scanning progress. Counter fields are snapshots of
// monotonically increasing accumulators, so consecutive updates never
// regress even though workers finish in nondeterministic order.
type Progress struct {
	// CurrentPath is the directory most recently entered.
	CurrentPath string
	// FilesDone is the total file entries processed so far.
	FilesDone int64
	// DirsDone is the total directories listed so far.
	DirsDone int64
	// BytesDone is the total bytes accounted for so far.
	BytesDone int64
	// Errors is the count of unreadable entries encountered.
	Errors int64
	// Done indicates the scan has reached a terminal state.
	Done bool
	// Elapsed is time since the scan started.
	Elapsed time.Duration
}

// ItemsPerSecond returns the scan rate.
func (p Progress) ItemsPerSecond() float64 {
	if p.Elapsed.Seconds() == 0 {
		return 0
	}
	return float64(p.FilesDone+p.DirsDone) / p.Elapsed.Seconds()
}
