//go:build !windows

package scanner

import (
	"os"
	"syscall"
)

// statInfo holds platform-specific file identity metadata.
type statInfo struct {
	dev   uint64
	ino   uint64
	nlink uint64
	ok    bool // true if platform stat was available
}

// getStatInfo extracts device, inode and link count from file info.
func getStatInfo(info os.FileInfo) statInfo {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return statInfo{}
	}
	return statInfo{
		dev:   uint64(stat.Dev),
		ino:   stat.Ino,
		nlink: uint64(stat.Nlink),
		ok:    true,
	}
}
