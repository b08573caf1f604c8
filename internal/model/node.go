package model

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	maxInt64 = int64(^uint64(0) >> 1)
	minInt64 = -maxInt64 - 1
)

// NodeFlag represents special attributes of a scanned entry.
type NodeFlag uint8

const (
	FlagNone    NodeFlag = 0
	FlagSymlink NodeFlag = 1 << iota
	// FlagError marks an entry that could not be fully read. For a
	// directory it means size and children are a partial, best-effort
	// aggregate.
	FlagError
	FlagHardlink
	// FlagSpecial marks sockets, devices and other non-regular files.
	FlagSpecial
)

// FileNode represents a single file in the tree.
type FileNode struct {
	Name   string    // Base name (root holds the absolute scan path)
	Size   int64     // Logical size in bytes
	Mtime  time.Time // Last modification time; zero if unreadable
	Flag   NodeFlag
	Parent *DirNode // Parent directory (nil for root)
}

// DirNode represents a directory with children. Size is the aggregated
// sum of all descendant file sizes, never a filesystem-reported value.
type DirNode struct {
	FileNode
	Children  []TreeNode // Mixed files and subdirectories
	FileCount int64      // Total recursive file count
	mu        sync.RWMutex
}

// TreeNode is the interface satisfied by both FileNode and DirNode.
type TreeNode interface {
	GetName() string
	GetSize() int64
	GetMtime() time.Time
	GetFlag() NodeFlag
	GetParent() *DirNode
	IsDir() bool
	Path() string
	Extension() string
	HasError() bool
}

// --- FileNode implements TreeNode ---

func (f *FileNode) GetName() string     { return f.Name }
func (f *FileNode) GetSize() int64      { return f.Size }
func (f *FileNode) GetMtime() time.Time { return f.Mtime }
func (f *FileNode) GetFlag() NodeFlag   { return f.Flag }
func (f *FileNode) GetParent() *DirNode { return f.Parent }
func (f *FileNode) IsDir() bool         { return false }
func (f *FileNode) HasError() bool      { return f.Flag&FlagError != 0 }

func (f *FileNode) Path() string {
	return buildPath(f.Parent, f.Name)
}

// Extension returns the lowercase extension of the file name, without
// the leading dot. Extensionless files yield "".
func (f *FileNode) Extension() string {
	return Extension(f.Name)
}

// --- DirNode implements TreeNode ---

func (d *DirNode) IsDir() bool { return true }

func (d *DirNode) Path() string {
	return buildPath(d.Parent, d.Name)
}

// Extension is always empty for directories.
func (d *DirNode) Extension() string { return "" }

// AddChild appends a child node thread-safely.
func (d *DirNode) AddChild(child TreeNode) {
	d.mu.Lock()
	d.Children = append(d.Children, child)
	d.mu.Unlock()
}

// GetChildren returns a snapshot of children thread-safely.
func (d *DirNode) GetChildren() []TreeNode {
	d.mu.RLock()
	cp := make([]TreeNode, len(d.Children))
	copy(cp, d.Children)
	d.mu.RUnlock()
	return cp
}

// ReadChildren returns the children slice directly without copying.
// Safe for post-scan read-only access when no concurrent writes occur.
func (d *DirNode) ReadChildren() []TreeNode {
	return d.Children
}

// UpdateSize recalculates this directory's size and file count from its
// immediate children.
func (d *DirNode) UpdateSize() {
	d.mu.RLock()
	var size, count int64
	for _, c := range d.Children {
		size = saturatingAddInt64(size, c.GetSize())
		if cd, ok := c.(*DirNode); ok {
			count = saturatingAddInt64(count, cd.FileCount)
		} else {
			count = saturatingAddInt64(count, 1)
		}
	}
	d.mu.RUnlock()

	d.Size = size
	d.FileCount = count
}

// UpdateSizeRecursive performs a bottom-up aggregation. Children are
// finalized before parents, ensuring correct totals. Must be called only
// after all concurrent writes are complete.
func (d *DirNode) UpdateSizeRecursive() {
	for _, child := range d.Children {
		if cd, ok := child.(*DirNode); ok {
			cd.UpdateSizeRecursive()
		}
	}
	d.UpdateSize()
}

// CountErrors returns the number of entries in the subtree (including
// this directory) carrying FlagError.
func (d *DirNode) CountErrors() int64 {
	var n int64
	if d.HasError() {
		n++
	}
	for _, child := range d.Children {
		if cd, ok := child.(*DirNode); ok {
			n += cd.CountErrors()
		} else if child.HasError() {
			n++
		}
	}
	return n
}

func saturatingAddInt64(a, b int64) int64 {
	if b > 0 && a > maxInt64-b {
		return maxInt64
	}
	if b < 0 && a < minInt64-b {
		return minInt64
	}
	return a + b
}

// Extension returns the lowercase suffix of name without the dot, or ""
// when there is none.
func Extension(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		c := name[i]
		if c == '.' {
			// Leading dot (dotfile) or trailing dot: no extension.
			if i == 0 || i == len(name)-1 {
				return ""
			}
			return strings.ToLower(name[i+1:])
		}
		if c == '/' || c == '\\' {
			break
		}
	}
	return ""
}

// buildPath reconstructs the full path by walking up the parent chain.
func buildPath(parent *DirNode, name string) string {
	if parent == nil {
		return name
	}
	depth := 0
	for p := parent; p != nil; p = p.Parent {
		depth++
	}
	parts := make([]string, depth+1)
	parts[depth] = name
	i := depth - 1
	for p := parent; p != nil; p = p.Parent {
		parts[i] = p.Name
		i--
	}
	return filepath.Join(parts...)
}
