package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seijaku-code/soko-mushi/internal/model"
)

// fixture: root/{a.txt:10, b.txt:5, big.dat:100, c:1}
func buildTree() *model.DirNode {
	root := &model.DirNode{FileNode: model.FileNode{Name: "/scan"}}
	for _, f := range []struct {
		name string
		size int64
	}{
		{"a.txt", 10},
		{"b.txt", 5},
		{"big.dat", 100},
		{"c", 1},
	} {
		root.AddChild(&model.FileNode{Name: f.name, Size: f.size, Parent: root})
	}
	root.UpdateSizeRecursive()
	return root
}

func TestLargest_FilesOnly(t *testing.T) {
	root := buildTree()
	got := Largest(root, 2, FilesOnly)

	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].Size)
	assert.Equal(t, "big.dat", got[0].Name)
	assert.Equal(t, int64(10), got[1].Size)
	assert.False(t, got[0].IsDir)
}

func TestLargest_TiesBrokenByPath(t *testing.T) {
	root := &model.DirNode{FileNode: model.FileNode{Name: "/scan"}}
	root.AddChild(&model.FileNode{Name: "zzz", Size: 10, Parent: root})
	root.AddChild(&model.FileNode{Name: "aaa", Size: 10, Parent: root})
	root.UpdateSizeRecursive()

	got := Largest(root, 2, FilesOnly)
	require.Len(t, got, 2)
	assert.Equal(t, "aaa", got[0].Name)
	assert.Equal(t, "zzz", got[1].Name)
}

func TestLargest_IncludesDirectories(t *testing.T) {
	root := buildTree()
	sub := &model.DirNode{FileNode: model.FileNode{Name: "sub", Parent: root}}
	sub.AddChild(&model.FileNode{Name: "inner", Size: 500, Parent: sub})
	root.AddChild(sub)
	root.UpdateSizeRecursive()

	all := Largest(root, 3, FilesAndDirs)
	require.Len(t, all, 3)
	// Root (616) > sub (500) > inner (500): tie between sub and inner is
	// resolved by path, and sub's path sorts before its child's.
	assert.True(t, all[0].IsDir)
	assert.Equal(t, root.Path(), all[0].Path)

	dirs := Largest(root, 10, DirsOnly)
	for _, e := range dirs {
		assert.True(t, e.IsDir, "DirsOnly returned a file: %s", e.Path)
	}
}

func TestLargest_EmptyAndNil(t *testing.T) {
	assert.Nil(t, Largest(nil, 5, FilesOnly))
	assert.Nil(t, Largest(buildTree(), 0, FilesOnly))
}

func TestExtensions(t *testing.T) {
	root := buildTree()
	got := Extensions(root)

	assert.Equal(t, ExtStat{Count: 2, Size: 15}, got["txt"])
	assert.Equal(t, ExtStat{Count: 1, Size: 100}, got["dat"])
	assert.Equal(t, ExtStat{Count: 1, Size: 1}, got[NoExtension])
	assert.Len(t, got, 3)
}

func TestExtensions_ExcludesDirectories(t *testing.T) {
	root := buildTree()
	sub := &model.DirNode{FileNode: model.FileNode{Name: "sub.txt", Parent: root}}
	root.AddChild(sub)
	root.UpdateSizeRecursive()

	got := Extensions(root)
	assert.Equal(t, int64(2), got["txt"].Count, "directory named *.txt must not be counted")
}

func TestSortedExtensions(t *testing.T) {
	m := map[string]ExtStat{
		"txt":       {Count: 2, Size: 15},
		"dat":       {Count: 1, Size: 100},
		NoExtension: {Count: 1, Size: 1},
	}
	keys := SortedExtensions(m)
	assert.Equal(t, []string{"dat", "txt", NoExtension}, keys)
}
