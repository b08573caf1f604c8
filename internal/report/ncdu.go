package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/seijaku-code/soko-mushi/internal/model"
)

// ncdu-compatible JSON format:
// [1, 0, {"progname":"sokomushi","progver":"1.0","timestamp":1234567890},
//   [{"name":"/path","asize":123},
//     {"name":"file1","asize":10},
//     [{"name":"subdir","asize":30},
//       {"name":"file2","asize":5}
//     ]
//   ]
// ]

type ncduHeader struct {
	Progname  string `json:"progname"`
	Progver   string `json:"progver"`
	Timestamp int64  `json:"timestamp"`
}

type ncduEntry struct {
	Name    string `json:"name"`
	Asize   int64  `json:"asize"`
	Err     bool   `json:"read_error,omitempty"`
	Symlink bool   `json:"symlink,omitempty"`
	Special bool   `json:"notreg,omitempty"`
}

// ExportNcdu writes the tree in ncdu-compatible JSON, so a finished scan
// can be reloaded (or browsed with ncdu itself) without re-walking the
// filesystem. Use "-" to write to stdout.
func ExportNcdu(root *model.DirNode, path string, version string) error {
	if version == "" {
		version = "dev"
	}
	return writeAtomic(path, func(out io.Writer) error {
		ew := &errWriter{w: out}

		ew.WriteString("[1, 0, ")
		headerJSON, err := json.Marshal(ncduHeader{
			Progname:  "sokomushi",
			Progver:   version,
			Timestamp: time.Now().Unix(),
		})
		if err != nil {
			return err
		}
		_, _ = ew.Write(headerJSON)
		ew.WriteString(",\n")

		writeNcduDir(ew, root)

		ew.WriteString("\n]\n")
		return ew.err
	})
}

func toNcduEntry(node model.TreeNode) ncduEntry {
	return ncduEntry{
		Name:    node.GetName(),
		Asize:   node.GetSize(),
		Err:     node.HasError(),
		Symlink: node.GetFlag()&model.FlagSymlink != 0,
		Special: node.GetFlag()&model.FlagSpecial != 0,
	}
}

func writeNcduDir(ew *errWriter, dir *model.DirNode) {
	if ew.err != nil {
		return
	}

	ew.WriteString("[")
	data, err := json.Marshal(toNcduEntry(dir))
	if err != nil {
		ew.err = err
		return
	}
	_, _ = ew.Write(data)

	for _, child := range dir.ReadChildren() {
		if ew.err != nil {
			return
		}
		ew.WriteString(",\n")

		switch c := child.(type) {
		case *model.DirNode:
			writeNcduDir(ew, c)
		default:
			data, err := json.Marshal(toNcduEntry(child))
			if err != nil {
				ew.err = err
				return
			}
			_, _ = ew.Write(data)
		}
	}

	ew.WriteString("]")
}

// ImportNcdu loads a tree previously written by ExportNcdu (or by ncdu).
// Sizes are recomputed bottom-up after parsing, so aggregate invariants
// hold regardless of what the file claims.
func ImportNcdu(path string) (*model.DirNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}

	// Top-level array: [version, minor, header, rootDir]
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("invalid ncdu format: expected at least 4 elements, got %d", len(raw))
	}

	root, err := parseNcduDir(raw[3], nil)
	if err != nil {
		return nil, fmt.Errorf("cannot parse root directory: %w", err)
	}

	root.UpdateSizeRecursive()
	return root, nil
}

func parseNcduDir(data json.RawMessage, parent *model.DirNode) (*model.DirNode, error) {
	// A directory is an array: [{dir_entry}, child1, child2, ...]
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("directory is not an array: %w", err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("empty directory array")
	}

	var entry ncduEntry
	if err := json.Unmarshal(elements[0], &entry); err != nil {
		return nil, fmt.Errorf("cannot parse directory entry: %w", err)
	}

	dir := &model.DirNode{
		FileNode: model.FileNode{
			Name:   entry.Name,
			Size:   entry.Asize,
			Flag:   entryFlags(entry),
			Parent: parent,
		},
	}

	// Remaining elements are children: objects are files, arrays are
	// subdirectories.
	for i := 1; i < len(elements); i++ {
		child := trimLeadingWhitespace(elements[i])
		if len(child) == 0 {
			continue
		}

		switch child[0] {
		case '[':
			subDir, err := parseNcduDir(elements[i], dir)
			if err != nil {
				return nil, err
			}
			dir.AddChild(subDir)
		case '{':
			var fileEntry ncduEntry
			if err := json.Unmarshal(elements[i], &fileEntry); err != nil {
				return nil, fmt.Errorf("cannot parse file entry: %w", err)
			}
			dir.AddChild(&model.FileNode{
				Name:   fileEntry.Name,
				Size:   fileEntry.Asize,
				Flag:   entryFlags(fileEntry),
				Parent: dir,
			})
		}
	}

	return dir, nil
}

func entryFlags(e ncduEntry) model.NodeFlag {
	var flag model.NodeFlag
	if e.Err {
		flag |= model.FlagError
	}
	if e.Symlink {
		flag |= model.FlagSymlink
	}
	if e.Special {
		flag |= model.FlagSpecial
	}
	return flag
}

func trimLeadingWhitespace(data []byte) []byte {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return data[i:]
		}
	}
	return nil
}
