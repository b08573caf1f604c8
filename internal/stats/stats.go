// Package stats derives read-only views from a finished scan tree:
// largest entries and per-extension breakdowns. It never mutates the
// tree and is safe to call concurrently on an immutable result, but must
// not run against a tree still being built.
package stats

import (
	"sort"

	"github.com/seijaku-code/soko-mushi/internal/model"
)

// NoExtension is the bucket key for files without an extension.
const NoExtension = "<none>"

// Selection chooses which node kinds Largest considers.
type Selection int

const (
	FilesAndDirs Selection = iota
	FilesOnly
	DirsOnly
)

// Entry is one ranked item from Largest.
type Entry struct {
	Path  string
	Name  string
	Size  int64
	IsDir bool
}

// ExtStat accumulates per-extension file statistics.
type ExtStat struct {
	Count int64 `json:"count"`
	Size  int64 `json:"size"`
}

// Largest returns the n largest entries in the tree, ordered by size
// descending with ties broken by path ascending so output is
// deterministic. The root itself is eligible when directories are
// selected.
func Largest(root *model.DirNode, n int, sel Selection) []Entry {
	if root == nil || n <= 0 {
		return nil
	}

	var all []Entry
	collect(root, sel, &all)

	sort.Slice(all, func(i, j int) bool {
		if all[i].Size != all[j].Size {
			return all[i].Size > all[j].Size
		}
		return all[i].Path < all[j].Path
	})

	if len(all) > n {
		all = all[:n]
	}
	return all
}

func collect(node model.TreeNode, sel Selection, out *[]Entry) {
	isDir := node.IsDir()
	if (isDir && sel != FilesOnly) || (!isDir && sel != DirsOnly) {
		*out = append(*out, Entry{
			Path:  node.Path(),
			Name:  node.GetName(),
			Size:  node.GetSize(),
			IsDir: isDir,
		})
	}
	if dir, ok := node.(*model.DirNode); ok {
		for _, child := range dir.ReadChildren() {
			collect(child, sel, out)
		}
	}
}

// Extensions returns per-extension counts and cumulative sizes over all
// files in the tree. Directories are excluded; extensionless files are
// bucketed under NoExtension.
func Extensions(root *model.DirNode) map[string]ExtStat {
	out := make(map[string]ExtStat)
	if root == nil {
		return out
	}
	collectExtensions(root, out)
	return out
}

func collectExtensions(dir *model.DirNode, out map[string]ExtStat) {
	for _, child := range dir.ReadChildren() {
		if cd, ok := child.(*model.DirNode); ok {
			collectExtensions(cd, out)
			continue
		}
		ext := child.Extension()
		if ext == "" {
			ext = NoExtension
		}
		s := out[ext]
		s.Count++
		s.Size += child.GetSize()
		out[ext] = s
	}
}

// SortedExtensions returns extension keys ordered by cumulative size
// descending, ties broken by key, for stable report output.
func SortedExtensions(m map[string]ExtStat) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]].Size != m[keys[j]].Size {
			return m[keys[i]].Size > m[keys[j]].Size
		}
		return keys[i] < keys[j]
	})
	return keys
}
