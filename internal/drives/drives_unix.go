//go:build !windows

package drives

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// Pseudo-filesystems that carry no user data and only clutter the list.
var ignoredFilesystems = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true,
	"tmpfs": true, "cgroup": true, "cgroup2": true, "pstore": true,
	"securityfs": true, "debugfs": true, "tracefs": true, "fusectl": true,
	"configfs": true, "bpf": true, "mqueue": true, "hugetlbfs": true,
	"autofs": true, "binfmt_misc": true, "overlay": true, "squashfs": true,
	"rpc_pipefs": true, "nsfs": true, "ramfs": true, "efivarfs": true,
}

func list() ([]Volume, error) {
	mounts, err := readMounts("/proc/mounts")
	if err != nil {
		// No /proc (e.g. macOS, BSD): fall back to well-known roots.
		mounts = fallbackMounts()
	}

	volumes := make([]Volume, 0, len(mounts))
	for _, m := range mounts {
		v := Volume{Path: m.path, Filesystem: m.fsType}
		var st unix.Statfs_t
		if err := unix.Statfs(m.path, &st); err != nil {
			v.Err = err
		} else {
			bsize := uint64(st.Bsize)
			v.Total = st.Blocks * bsize
			v.Free = st.Bavail * bsize
		}
		volumes = append(volumes, v)
	}

	sort.Slice(volumes, func(i, j int) bool { return volumes[i].Path < volumes[j].Path })
	return volumes, nil
}

type mount struct {
	path   string
	fsType string
}

// readMounts parses a /proc/mounts-format file, keeping one entry per
// mount point and skipping pseudo-filesystems.
func readMounts(path string) ([]mount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]bool)
	var mounts []mount

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		// Octal escapes in mount points (e.g. \040 for space).
		mountPoint := unescapeMountPath(fields[1])
		fsType := fields[2]
		if ignoredFilesystems[fsType] || seen[mountPoint] {
			continue
		}
		seen[mountPoint] = true
		mounts = append(mounts, mount{path: mountPoint, fsType: fsType})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}

func fallbackMounts() []mount {
	mounts := []mount{{path: "/"}}
	for _, p := range []string{"/home", "/mnt", "/media", "/Volumes"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			mounts = append(mounts, mount{path: p})
		}
	}
	return mounts
}

// unescapeMountPath decodes the \ooo octal escapes the kernel uses for
// whitespace in mount points.
func unescapeMountPath(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) &&
			isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			b.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }
