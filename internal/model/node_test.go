package model

import (
	"path/filepath"
	"testing"
)

func TestFileNode_Path_Root(t *testing.T) {
	f := &FileNode{Name: "file.txt"}
	if got := f.Path(); got != "file.txt" {
		t.Errorf("Path() = %q, want %q", got, "file.txt")
	}
}

func TestFileNode_Path_DeepNesting(t *testing.T) {
	root := &DirNode{FileNode: FileNode{Name: "/root"}}
	sub1 := &DirNode{FileNode: FileNode{Name: "a", Parent: root}}
	sub2 := &DirNode{FileNode: FileNode{Name: "b", Parent: sub1}}
	f := &FileNode{Name: "c.txt", Parent: sub2}
	want := filepath.Join("/root", "a", "b", "c.txt")
	if got := f.Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestDirNode_AddChild_GetChildren(t *testing.T) {
	dir := &DirNode{FileNode: FileNode{Name: "parent"}}
	dir.AddChild(&FileNode{Name: "a.txt", Size: 10, Parent: dir})
	dir.AddChild(&FileNode{Name: "b.txt", Size: 20, Parent: dir})

	children := dir.GetChildren()
	if len(children) != 2 {
		t.Fatalf("GetChildren() returned %d items, want 2", len(children))
	}
	if children[0].GetName() != "a.txt" || children[1].GetName() != "b.txt" {
		t.Error("GetChildren() returned unexpected names")
	}

	// Verify GetChildren returns a copy
	children[0] = nil
	if dir.GetChildren()[0] == nil {
		t.Error("GetChildren() did not return a copy")
	}
}

func TestDirNode_UpdateSize(t *testing.T) {
	dir := &DirNode{FileNode: FileNode{Name: "parent"}}
	dir.AddChild(&FileNode{Name: "a", Size: 100, Parent: dir})
	dir.AddChild(&FileNode{Name: "b", Size: 300, Parent: dir})

	sub := &DirNode{FileNode: FileNode{Name: "sub", Parent: dir}}
	sub.AddChild(&FileNode{Name: "c", Size: 50, Parent: sub})
	sub.UpdateSize()
	dir.AddChild(sub)

	dir.UpdateSize()

	if dir.Size != 450 {
		t.Errorf("Size = %d, want 450", dir.Size)
	}
	if dir.FileCount != 3 {
		t.Errorf("FileCount = %d, want 3", dir.FileCount)
	}
}

func TestDirNode_UpdateSizeRecursive_BottomUp(t *testing.T) {
	root := &DirNode{FileNode: FileNode{Name: "/root"}}
	a := &DirNode{FileNode: FileNode{Name: "a", Parent: root}}
	b := &DirNode{FileNode: FileNode{Name: "b", Parent: a}}
	root.AddChild(a)
	a.AddChild(b)
	b.AddChild(&FileNode{Name: "deep.txt", Size: 7, Parent: b})
	a.AddChild(&FileNode{Name: "mid.txt", Size: 5, Parent: a})

	root.UpdateSizeRecursive()

	if b.Size != 7 || a.Size != 12 || root.Size != 12 {
		t.Errorf("sizes = %d/%d/%d, want 7/12/12", b.Size, a.Size, root.Size)
	}
	if root.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", root.FileCount)
	}
}

func TestSaturatingAddInt64(t *testing.T) {
	if got := saturatingAddInt64(maxInt64, 1); got != maxInt64 {
		t.Errorf("saturatingAddInt64(max, 1) = %d, want %d", got, maxInt64)
	}
	if got := saturatingAddInt64(minInt64, -1); got != minInt64 {
		t.Errorf("saturatingAddInt64(min, -1) = %d, want %d", got, minInt64)
	}
	if got := saturatingAddInt64(1, 2); got != 3 {
		t.Errorf("saturatingAddInt64(1, 2) = %d, want 3", got)
	}
}

func TestDirNode_CountErrors(t *testing.T) {
	root := &DirNode{FileNode: FileNode{Name: "/root"}}
	bad := &DirNode{FileNode: FileNode{Name: "denied", Flag: FlagError, Parent: root}}
	root.AddChild(bad)
	root.AddChild(&FileNode{Name: "broken", Flag: FlagSymlink | FlagError, Parent: root})
	root.AddChild(&FileNode{Name: "ok.txt", Size: 1, Parent: root})

	if got := root.CountErrors(); got != 2 {
		t.Errorf("CountErrors() = %d, want 2", got)
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"file.txt", "txt"},
		{"archive.TAR.GZ", "gz"},
		{"README", ""},
		{".bashrc", ""},
		{"trailing.", ""},
		{"Photo.JPG", "jpg"},
	}
	for _, tt := range tests {
		if got := Extension(tt.name); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDirNode_Extension_Empty(t *testing.T) {
	d := &DirNode{FileNode: FileNode{Name: "dir.d"}}
	if got := d.Extension(); got != "" {
		t.Errorf("directory Extension() = %q, want empty", got)
	}
}
