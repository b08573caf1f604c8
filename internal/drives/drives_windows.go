//go:build windows

package drives

import (
	"golang.org/x/sys/windows"
)

func list() ([]Volume, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, err
	}

	var volumes []Volume
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + `:\`
		v := Volume{Path: root}

		rootPtr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			v.Err = err
			volumes = append(volumes, v)
			continue
		}

		var free, total, totalFree uint64
		if err := windows.GetDiskFreeSpaceEx(rootPtr, &free, &total, &totalFree); err != nil {
			// Unready drives (empty card readers etc.) stay listed with
			// the error attached.
			v.Err = err
		} else {
			v.Total = total
			v.Free = free
		}

		var fsName [windows.MAX_PATH + 1]uint16
		if err := windows.GetVolumeInformation(rootPtr, nil, 0, nil, nil, nil, &fsName[0], uint32(len(fsName))); err == nil {
			v.Filesystem = windows.UTF16ToString(fsName[:])
		}

		volumes = append(volumes, v)
	}
	return volumes, nil
}
