package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/seijaku-code/soko-mushi/internal/model"
	"github.com/seijaku-code/soko-mushi/internal/stats"
	"github.com/seijaku-code/soko-mushi/internal/util"
)

// DefaultLargestCount is how many ranked items the JSON report carries.
const DefaultLargestCount = 50

// Report is the full JSON report shape.
type Report struct {
	ScanTimestamp      string                   `json:"scan_timestamp"`
	RootPath           string                   `json:"root_path"`
	TotalSize          int64                    `json:"total_size"`
	TotalSizeFormatted string                   `json:"total_size_formatted"`
	FileTree           *Entry                   `json:"file_tree"`
	FileTypeStats      map[string]stats.ExtStat `json:"file_type_stats"`
	LargestItems       []LargestItem            `json:"largest_items"`
}

// Entry is the recursive FileInfo-shaped report object.
type Entry struct {
	Path          string   `json:"path"`
	Name          string   `json:"name"`
	Size          int64    `json:"size"`
	SizeFormatted string   `json:"size_formatted"`
	IsDirectory   bool     `json:"is_directory"`
	Extension     string   `json:"extension,omitempty"`
	ModifiedTime  string   `json:"modified_time,omitempty"`
	ScanError     bool     `json:"scan_error,omitempty"`
	IsSymlink     bool     `json:"is_symlink,omitempty"`
	Children      []*Entry `json:"children,omitempty"`
}

// MarshalJSON ensures directories always serialize children as an array,
// never null or absent, even when empty or unreadable. Files carry no
// children key at all.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	if !e.IsDirectory {
		return json.Marshal((*alias)(e))
	}
	children := e.Children
	if children == nil {
		children = []*Entry{}
	}
	return json.Marshal(struct {
		*alias
		Children []*Entry `json:"children"`
	}{(*alias)(e), children})
}

// LargestItem is one ranked entry in the report.
type LargestItem struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	SizeFormatted string `json:"size_formatted"`
	IsDirectory   bool   `json:"is_directory"`
}

// Build assembles a Report from a finished tree. The tree is only read.
func Build(root *model.DirNode, scannedAt time.Time) *Report {
	largest := stats.Largest(root, DefaultLargestCount, stats.FilesAndDirs)
	items := make([]LargestItem, 0, len(largest))
	for _, e := range largest {
		items = append(items, LargestItem{
			Path:          e.Path,
			Name:          e.Name,
			Size:          e.Size,
			SizeFormatted: util.FormatSize(e.Size),
			IsDirectory:   e.IsDir,
		})
	}

	return &Report{
		ScanTimestamp:      scannedAt.Format(time.RFC3339),
		RootPath:           root.Path(),
		TotalSize:          root.Size,
		TotalSizeFormatted: util.FormatSize(root.Size),
		FileTree:           buildEntry(root),
		FileTypeStats:      stats.Extensions(root),
		LargestItems:       items,
	}
}

func buildEntry(node model.TreeNode) *Entry {
	e := &Entry{
		Path:          node.Path(),
		Name:          node.GetName(),
		Size:          node.GetSize(),
		SizeFormatted: util.FormatSize(node.GetSize()),
		IsDirectory:   node.IsDir(),
		Extension:     node.Extension(),
		ScanError:     node.HasError(),
		IsSymlink:     node.GetFlag()&model.FlagSymlink != 0,
	}
	if mtime := node.GetMtime(); !mtime.IsZero() {
		e.ModifiedTime = mtime.Format(time.RFC3339)
	}
	if dir, ok := node.(*model.DirNode); ok {
		children := dir.GetChildren()
		model.SortChildren(children, model.DefaultSort())
		e.Children = make([]*Entry, 0, len(children))
		for _, child := range children {
			e.Children = append(e.Children, buildEntry(child))
		}
	}
	return e
}

// WriteJSON writes the full report for root to path ("-" for stdout).
func WriteJSON(root *model.DirNode, scannedAt time.Time, path string) error {
	rep := Build(root, scannedAt)
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	})
}
