//go:build windows

package scanner

import "os"

// statInfo holds platform-specific file identity metadata.
type statInfo struct {
	dev   uint64
	ino   uint64
	nlink uint64
	ok    bool // true if platform stat was available
}

// getStatInfo on Windows reports no identity metadata, so hardlink
// detection is disabled and every entry counts its own size.
func getStatInfo(info os.FileInfo) statInfo {
	return statInfo{}
}
