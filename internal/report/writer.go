// Package report serializes finished scan trees: a full JSON report, CSV
// tables, and an ncdu-compatible interchange format that can be imported
// back without re-walking the filesystem.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// writeAtomic writes through fn into path. "-" targets stdout directly;
// file targets are written to a temp file first and renamed on success,
// so a partial file is never left behind on error.
func writeAtomic(path string, fn func(io.Writer) error) (retErr error) {
	if path == "-" {
		bw := bufio.NewWriterSize(os.Stdout, 64*1024)
		if err := fn(bw); err != nil {
			return err
		}
		return bw.Flush()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".sokomushi-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 64*1024)
	if err := fn(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace output file %s: %w", path, err)
		}
		return os.Rename(tmpPath, path)
	}
	return nil
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, avoiding verbose per-call
// checks in streaming serializers.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) Write(data []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(data)
	if err != nil {
		ew.err = err
	}
	return n, err
}
