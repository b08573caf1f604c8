package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/seijaku-code/soko-mushi/internal/model"
)

// Status is the terminal state of a scan.
type Status int

const (
	// StatusCompleted means the whole tree was walked. The result may
	// still contain unreadable entries; check Result.Unreadable.
	StatusCompleted Status = iota
	// StatusCancelled means the scan was stopped cooperatively and the
	// result carries a partial but internally consistent tree.
	StatusCancelled
	// StatusFailed means the engine itself faulted. Any partial tree is
	// untrustworthy and Result.Err is set.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ErrScanInProgress is returned by Start while a previous scan on the
// same engine has not reached a terminal state.
var ErrScanInProgress = errors.New("a scan is already running on this engine")

// InvalidRootError reports a root path that is missing, not a directory,
// or inaccessible. It is raised before any traversal begins.
type InvalidRootError struct {
	Path string
	Err  error
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid scan root %s: %v", e.Path, e.Err)
}

func (e *InvalidRootError) Unwrap() error { return e.Err }

// Result is the terminal outcome of a scan.
type Result struct {
	Status Status
	// Root is the aggregated tree. Partial for cancelled scans, possibly
	// nil or partial for failed ones. Immutable once the result is
	// published.
	Root       *model.DirNode
	TotalSize  int64
	TotalFiles int64
	TotalDirs  int64
	// Unreadable counts entries recorded with an error flag.
	Unreadable int64
	Elapsed    time.Duration
	// Err is set only for StatusFailed.
	Err error
}

// Engine runs directory scans. At most one scan per engine may be
// running; Start rejects with ErrScanInProgress while one is active.
// Separate engine instances are fully independent.
type Engine struct {
	mu     sync.Mutex
	active *Scan
}

// NewEngine creates a scan engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Scan is the handle for one running or finished scan. The tree under
// construction is owned by the scan until Wait (or Done) observes a
// terminal state; only then may readers traverse the published result.
type Scan struct {
	rootPath string
	opts     Options

	cancel   context.CancelFunc
	progress chan Progress
	done     chan struct{}

	result *Result // set exactly once before done is closed
}

// Start validates rootPath and launches the scan in the background.
// It fails with *InvalidRootError before any traversal if the root is
// missing, unreadable, or not a directory.
func (e *Engine) Start(rootPath string, opts Options) (*Scan, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, &InvalidRootError{Path: rootPath, Err: err}
	}

	// Stat (not Lstat) so a symlinked root like /tmp -> /private/tmp works.
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, &InvalidRootError{Path: absPath, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidRootError{Path: absPath, Err: errors.New("not a directory")}
	}
	if _, err := os.ReadDir(absPath); err != nil {
		return nil, &InvalidRootError{Path: absPath, Err: err}
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}

	e.mu.Lock()
	if e.active != nil {
		select {
		case <-e.active.done:
			// Previous scan reached a terminal state.
		default:
			e.mu.Unlock()
			return nil, ErrScanInProgress
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scan{
		rootPath: absPath,
		opts:     opts,
		cancel:   cancel,
		progress: make(chan Progress, 16),
		done:     make(chan struct{}),
	}
	e.active = s
	e.mu.Unlock()

	go s.run(ctx, info.ModTime())

	return s, nil
}

// Cancel requests cooperative cancellation. Workers observe the request
// at the start of each directory and entry; listing calls already in
// flight finish normally. Safe to call multiple times and after
// completion.
func (s *Scan) Cancel() {
	s.cancel()
}

// Progress returns the stream of coalesced progress updates. The channel
// is closed after the final update (Done=true) once the scan reaches a
// terminal state.
func (s *Scan) Progress() <-chan Progress {
	return s.progress
}

// Done is closed when the scan reaches a terminal state.
func (s *Scan) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the scan finishes and returns the immutable result.
func (s *Scan) Wait() *Result {
	<-s.done
	return s.result
}

// Root returns the scan root path.
func (s *Scan) Root() string {
	return s.rootPath
}

const progressInterval = 50 * time.Millisecond

func (s *Scan) run(ctx context.Context, rootMtime time.Time) {
	defer s.cancel()

	start := time.Now()
	root := &model.DirNode{
		FileNode: model.FileNode{
			Name:  s.rootPath,
			Mtime: rootMtime,
		},
	}

	w := newWalker(s.opts)
	res := &Result{Status: StatusCompleted, Root: root}

	defer func() {
		// An engine fault must still publish a terminal result; the
		// partial tree stays attached for inspection but is marked
		// untrustworthy via StatusFailed.
		if r := recover(); r != nil {
			res.Status = StatusFailed
			res.Err = fmt.Errorf("internal fault: %v", r)
			log.WithField("panic", r).Error("scan failed")
		}
		res.Elapsed = time.Since(start)
		s.result = res
		s.emitFinal(w.snapshot(res.Elapsed, true))
		close(s.progress)
		close(s.done)
	}()

	// Progress publisher: snapshots of the walker's atomic counters on a
	// fixed cadence. Counters only grow, so updates never regress.
	reporterDone := make(chan struct{})
	var reporterWg sync.WaitGroup
	reporterWg.Add(1)
	go func() {
		defer reporterWg.Done()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.emit(w.snapshot(time.Since(start), false))
			case <-reporterDone:
				return
			}
		}
	}()

	w.walk(ctx, s.rootPath, root)

	close(reporterDone)
	reporterWg.Wait()

	// Bottom-up aggregation over whatever was built. Runs for cancelled
	// scans too, so partial totals stay internally consistent.
	root.UpdateSizeRecursive()

	if ctx.Err() != nil {
		res.Status = StatusCancelled
	}
	res.TotalSize = root.Size
	res.TotalFiles = w.files.Load()
	res.TotalDirs = w.dirs.Load()
	res.Unreadable = w.errs.Load()
}

// emit delivers a progress update without ever blocking a worker: if the
// consumer is behind, the update is dropped and the next snapshot
// supersedes it.
func (s *Scan) emit(p Progress) {
	select {
	case s.progress <- p:
	default:
	}
}

// emitFinal delivers the terminal update. The reporter has stopped, so
// this goroutine is the only sender; evicting one stale snapshot always
// makes room.
func (s *Scan) emitFinal(p Progress) {
	for {
		select {
		case s.progress <- p:
			return
		default:
		}
		select {
		case <-s.progress:
		default:
		}
	}
}
