//go:build !windows

package drives

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_ReturnsAtLeastOneVolume(t *testing.T) {
	volumes, err := List()
	require.NoError(t, err)
	require.NotEmpty(t, volumes)

	usable := 0
	for _, v := range volumes {
		assert.NotEmpty(t, v.Path)
		if v.Err == nil {
			usable++
			assert.NotZero(t, v.Total, "volume %s reports zero capacity", v.Path)
			assert.LessOrEqual(t, v.Free, v.Total, "volume %s free exceeds total", v.Path)
		}
	}
	assert.NotZero(t, usable, "expected at least one queryable volume")
}

func TestReadMounts_ParsesAndFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mounts")
	content := `/dev/sda1 / ext4 rw,relatime 0 0
proc /proc proc rw 0 0
tmpfs /run tmpfs rw 0 0
/dev/sdb1 /mnt/data xfs rw 0 0
/dev/sdb1 /mnt/data xfs rw 0 0
/dev/sdc1 /mnt/with\040space btrfs rw 0 0
garbage-line
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	mounts, err := readMounts(path)
	require.NoError(t, err)

	var paths []string
	for _, m := range mounts {
		paths = append(paths, m.path)
	}
	assert.Equal(t, []string{"/", "/mnt/data", "/mnt/with space"}, paths)
	assert.Equal(t, "ext4", mounts[0].fsType)
}

func TestUnescapeMountPath(t *testing.T) {
	assert.Equal(t, "/mnt/plain", unescapeMountPath("/mnt/plain"))
	assert.Equal(t, "/mnt/a b", unescapeMountPath(`/mnt/a\040b`))
	assert.Equal(t, `/mnt/tail\`, unescapeMountPath(`/mnt/tail\`))
}
