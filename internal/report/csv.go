package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/seijaku-code/soko-mushi/internal/model"
	"github.com/seijaku-code/soko-mushi/internal/stats"
	"github.com/seijaku-code/soko-mushi/internal/util"
)

// WriteFileListCSV writes every entry of the tree, one row per file or
// directory, largest first within each directory.
func WriteFileListCSV(root *model.DirNode, path string) error {
	return writeAtomic(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write([]string{
			"path", "name", "size_bytes", "size_formatted", "type", "extension", "depth", "modified_time",
		}); err != nil {
			return err
		}
		if err := writeFileRows(w, root, 0); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

func writeFileRows(w *csv.Writer, node model.TreeNode, depth int) error {
	kind := "file"
	switch {
	case node.IsDir():
		kind = "directory"
	case node.GetFlag()&model.FlagSymlink != 0:
		kind = "symlink"
	case node.GetFlag()&model.FlagSpecial != 0:
		kind = "special"
	}

	mtime := ""
	if t := node.GetMtime(); !t.IsZero() {
		mtime = t.Format(time.RFC3339)
	}

	if err := w.Write([]string{
		node.Path(),
		node.GetName(),
		strconv.FormatInt(node.GetSize(), 10),
		util.FormatSize(node.GetSize()),
		kind,
		node.Extension(),
		strconv.Itoa(depth),
		mtime,
	}); err != nil {
		return err
	}

	if dir, ok := node.(*model.DirNode); ok {
		children := dir.GetChildren()
		model.SortChildren(children, model.DefaultSort())
		for _, child := range children {
			if err := writeFileRows(w, child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteTypeStatsCSV writes the per-extension statistics table, largest
// cumulative size first.
func WriteTypeStatsCSV(root *model.DirNode, path string) error {
	extStats := stats.Extensions(root)
	total := root.Size

	return writeAtomic(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write([]string{
			"extension", "file_count", "total_size_bytes", "total_size_formatted", "percent_of_total",
		}); err != nil {
			return err
		}
		for _, ext := range stats.SortedExtensions(extStats) {
			s := extStats[ext]
			if err := w.Write([]string{
				ext,
				strconv.FormatInt(s.Count, 10),
				strconv.FormatInt(s.Size, 10),
				util.FormatSize(s.Size),
				fmt.Sprintf("%.2f%%", util.Percent(s.Size, total)),
			}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// WriteLargestCSV writes the n largest entries, ranked.
func WriteLargestCSV(root *model.DirNode, n int, path string) error {
	largest := stats.Largest(root, n, stats.FilesAndDirs)

	return writeAtomic(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write([]string{
			"rank", "path", "name", "size_bytes", "size_formatted", "type",
		}); err != nil {
			return err
		}
		for i, item := range largest {
			kind := "file"
			if item.IsDir {
				kind = "directory"
			}
			if err := w.Write([]string{
				strconv.Itoa(i + 1),
				item.Path,
				item.Name,
				strconv.FormatInt(item.Size, 10),
				util.FormatSize(item.Size),
				kind,
			}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}
