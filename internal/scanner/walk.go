package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/seijaku-code/soko-mushi/internal/model"
)

// inodeKey uniquely identifies a file across filesystems using both
// device and inode number. Inode alone can falsely dedup entries from
// different filesystems.
type inodeKey struct {
	dev uint64
	ino uint64
}

// walker performs the bounded-parallel recursive descent. All shared
// state is limited to the atomic accumulators, the inode map, the
// visited-directory map and the semaphore; tree nodes are written only
// by the goroutine that owns their subtree until the final aggregation.
type walker struct {
	opts       Options
	sem        chan struct{}
	wg         sync.WaitGroup
	files      atomic.Int64
	dirs       atomic.Int64
	bytes      atomic.Int64
	errs       atomic.Int64
	current    atomic.Value // string: directory being listed
	excludeSet map[string]bool

	inodeMu  sync.Mutex
	inodeMap map[inodeKey]bool

	// visited tracks canonical directory paths so followed symlinks
	// cannot introduce cycles or double-counting.
	visited sync.Map
}

func newWalker(opts Options) *walker {
	excludeSet := make(map[string]bool, len(opts.ExcludePatterns))
	for _, p := range opts.ExcludePatterns {
		excludeSet[p] = true
	}
	w := &walker{
		opts:       opts,
		sem:        make(chan struct{}, opts.concurrency()),
		excludeSet: excludeSet,
		inodeMap:   make(map[inodeKey]bool),
	}
	w.current.Store("")
	return w
}

// snapshot builds a Progress from the current accumulator values.
func (w *walker) snapshot(elapsed time.Duration, done bool) Progress {
	cur, _ := w.current.Load().(string)
	return Progress{
		CurrentPath: cur,
		FilesDone:   w.files.Load(),
		DirsDone:    w.dirs.Load(),
		BytesDone:   w.bytes.Load(),
		Errors:      w.errs.Load(),
		Done:        done,
		Elapsed:     elapsed,
	}
}

// walk scans rootPath into root and blocks until every worker finished.
func (w *walker) walk(ctx context.Context, rootPath string, root *model.DirNode) {
	w.visited.Store(rootPath, true)
	w.walkDir(ctx, rootPath, root)
	w.wg.Wait()
}

// spawn runs fn on a pool goroutine if a slot is free, otherwise
// synchronously in the caller. Blocked goroutines are never created.
func (w *walker) spawn(fn func()) {
	select {
	case w.sem <- struct{}{}:
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			fn()
		}()
	default:
		fn()
	}
}

func (w *walker) walkDir(ctx context.Context, dirPath string, node *model.DirNode) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	w.current.Store(dirPath)

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		// Local to this subtree: the node keeps zero size and empty
		// children, the scan carries on.
		node.Flag |= model.FlagError
		w.errs.Add(1)
		log.WithError(err).WithField("path", dirPath).Debug("cannot list directory")
		return
	}

	w.dirs.Add(1)

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		name := entry.Name()

		if !w.opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if w.excludeSet[name] {
			continue
		}

		fullPath := filepath.Join(dirPath, name)
		if w.opts.Exclude != nil && w.opts.Exclude(fullPath) {
			continue
		}

		switch {
		case entry.IsDir():
			w.enterDir(ctx, entry, fullPath, node)
		case entry.Type()&os.ModeSymlink != 0:
			w.addSymlink(ctx, entry, fullPath, node)
		case entry.Type().IsRegular():
			w.addFile(entry, node)
		default:
			// Sockets, devices, FIFOs: recorded but never opened, and
			// they contribute no bytes.
			w.addSpecial(entry, node)
		}
	}
}

func (w *walker) enterDir(ctx context.Context, entry os.DirEntry, fullPath string, parent *model.DirNode) {
	scanPath := fullPath
	if resolved, err := filepath.EvalSymlinks(fullPath); err == nil {
		scanPath = resolved
	}

	child := &model.DirNode{
		FileNode: model.FileNode{
			Name:   entry.Name(),
			Parent: parent,
		},
	}
	if info, err := entry.Info(); err == nil {
		child.Mtime = info.ModTime()
	}
	parent.AddChild(child)

	// Already visited via another path: keep the node but skip the
	// recursion so its contents are not counted twice.
	if _, loaded := w.visited.LoadOrStore(scanPath, true); loaded {
		return
	}

	w.spawn(func() {
		w.walkDir(ctx, scanPath, child)
	})
}

// addSymlink records a symbolic link. By default the link itself becomes
// a leaf entry sized by Lstat, never traversed. With FollowSymlinks the
// target is resolved and either scanned as a directory (deduped against
// already-visited paths) or recorded as the target file.
func (w *walker) addSymlink(ctx context.Context, entry os.DirEntry, fullPath string, parent *model.DirNode) {
	if !w.opts.FollowSymlinks {
		info, err := entry.Info()
		if err != nil {
			w.addErrorEntry(entry.Name(), model.FlagSymlink, parent, err)
			return
		}
		node := &model.FileNode{
			Name:   entry.Name(),
			Size:   info.Size(),
			Mtime:  info.ModTime(),
			Flag:   model.FlagSymlink,
			Parent: parent,
		}
		parent.AddChild(node)
		w.files.Add(1)
		w.bytes.Add(info.Size())
		return
	}

	resolved, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		w.addErrorEntry(entry.Name(), model.FlagSymlink, parent, err)
		return
	}
	targetInfo, err := os.Stat(resolved)
	if err != nil {
		w.addErrorEntry(entry.Name(), model.FlagSymlink, parent, err)
		return
	}

	if targetInfo.IsDir() {
		child := &model.DirNode{
			FileNode: model.FileNode{
				Name:   entry.Name(),
				Mtime:  targetInfo.ModTime(),
				Flag:   model.FlagSymlink,
				Parent: parent,
			},
		}
		parent.AddChild(child)

		if _, loaded := w.visited.LoadOrStore(resolved, true); loaded {
			return
		}
		w.spawn(func() {
			w.walkDir(ctx, resolved, child)
		})
		return
	}

	node := &model.FileNode{
		Name:   entry.Name(),
		Size:   targetInfo.Size(),
		Mtime:  targetInfo.ModTime(),
		Flag:   model.FlagSymlink,
		Parent: parent,
	}
	if st := getStatInfo(targetInfo); st.ok && st.nlink > 1 && w.seenInode(st) {
		node.Flag |= model.FlagHardlink
		node.Size = 0
	}
	parent.AddChild(node)
	w.files.Add(1)
	w.bytes.Add(node.Size)
}

func (w *walker) addFile(entry os.DirEntry, parent *model.DirNode) {
	info, err := entry.Info()
	if err != nil {
		w.addErrorEntry(entry.Name(), model.FlagNone, parent, err)
		return
	}

	if w.opts.MinSize > 0 && info.Size() < w.opts.MinSize {
		return
	}

	node := &model.FileNode{
		Name:   entry.Name(),
		Size:   info.Size(),
		Mtime:  info.ModTime(),
		Parent: parent,
	}

	// Multiply-linked files count once; later sightings keep a zero-size
	// node so the listing stays complete.
	if st := getStatInfo(info); st.ok && st.nlink > 1 && w.seenInode(st) {
		node.Flag |= model.FlagHardlink
		node.Size = 0
	}

	parent.AddChild(node)
	w.files.Add(1)
	w.bytes.Add(node.Size)
}

func (w *walker) addSpecial(entry os.DirEntry, parent *model.DirNode) {
	node := &model.FileNode{
		Name:   entry.Name(),
		Flag:   model.FlagSpecial,
		Parent: parent,
	}
	if info, err := entry.Info(); err == nil {
		node.Mtime = info.ModTime()
	}
	parent.AddChild(node)
	w.files.Add(1)
}

// addErrorEntry records an entry whose metadata could not be read. It
// contributes zero bytes and carries the error flag so consumers can
// tell partial data from complete data.
func (w *walker) addErrorEntry(name string, extra model.NodeFlag, parent *model.DirNode, err error) {
	parent.AddChild(&model.FileNode{
		Name:   name,
		Flag:   model.FlagError | extra,
		Parent: parent,
	})
	w.files.Add(1)
	w.errs.Add(1)
	log.WithError(err).WithField("name", name).Debug("cannot stat entry")
}

// seenInode reports whether this (dev, ino) pair was already counted.
func (w *walker) seenInode(st statInfo) bool {
	key := inodeKey{dev: st.dev, ino: st.ino}
	w.inodeMu.Lock()
	defer w.inodeMu.Unlock()
	if w.inodeMap[key] {
		return true
	}
	w.inodeMap[key] = true
	return false
}
