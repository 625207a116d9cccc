package asset

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/df-mc/goleveldb/leveldb"
	"golang.org/x/sync/errgroup"
)

// Entry describes one indexed asset file.
type Entry struct {
	ID      string
	Path    string
	Version uint64
}

// ReloadFunc is invoked by PollHotReload whenever a previously scanned file's
// modification time changes.
type ReloadFunc func(Entry)

// Registry indexes `.atlas`/`.atlasb` files under a directory root into
// Entry values keyed by file stem, and polls for filesystem modifications so
// a host can hot-reload changed assets. Hot reload is polling, not
// event-driven, because the core must stay portable across filesystems
// without a watch API; a host may substitute a watcher so long as the
// external observable order — detect, bump version, invoke callback — is
// unchanged.
type Registry struct {
	log *slog.Logger

	mu         sync.Mutex
	entries    map[string]Entry
	timestamps map[string]time.Time
	onReload   ReloadFunc

	// cache, when non-nil, persists each path's {version, mtime} across
	// process restarts so a later Scan resumes an asset's version from the
	// cache instead of restarting it at 1. Only the version is read back: the
	// stored mtime is not compared, so a file changed while no Registry was
	// running is not reported as a reload. A Registry with no cache
	// configured behaves the same way, except that every Scan starts
	// versions at 1.
	cache *leveldb.DB
}

// NewRegistry returns an empty Registry. log defaults to slog.Default() when
// nil.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:        log,
		entries:    make(map[string]Entry),
		timestamps: make(map[string]time.Time),
	}
}

// OpenCache opens (creating if necessary) a LevelDB-backed cache at path and
// attaches it to the Registry. Closing the cache is the caller's
// responsibility via Close.
func (r *Registry) OpenCache(path string) error {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.cache = db
	r.mu.Unlock()
	return nil
}

// Close releases the Registry's cache database, if one was opened.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		return nil
	}
	err := r.cache.Close()
	r.cache = nil
	return err
}

// Scan walks root recursively, registering every `.atlas`/`.atlasb` file it
// finds with an initial version of 1 (or the version recovered from the
// cache, if one is configured and holds a prior entry for that path). If
// root does not exist, Scan does nothing and the registry stays empty.
//
// Per-file stat and cache lookups fan out across a bounded worker group:
// directory walking is I/O bound and independent per file, so there is
// nothing gained by doing it on a single goroutine once the candidate path
// list is known.
func (r *Registry) Scan(root string) error {
	if _, err := os.Stat(root); err != nil {
		return nil
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".atlas" || ext == ".atlasb" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(8)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			r.registerPath(p)
			return nil
		})
	}
	return g.Wait()
}

func (r *Registry) registerPath(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	version := r.cachedVersion(path)

	r.mu.Lock()
	r.entries[stem] = Entry{ID: stem, Path: path, Version: version}
	r.timestamps[path] = info.ModTime()
	r.mu.Unlock()

	r.persist(path, version, info.ModTime())
}

// Get returns the Entry registered under id, or false if no such asset has
// been scanned.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

// SetReloadCallback sets the function PollHotReload invokes for each changed
// asset.
func (r *Registry) SetReloadCallback(fn ReloadFunc) {
	r.mu.Lock()
	r.onReload = fn
	r.mu.Unlock()
}

// PollHotReload checks every scanned asset's current modification time
// against the last-seen one. For each that changed, it bumps the entry's
// version, persists the change, and invokes the reload callback (if any) on
// the calling goroutine — hosts should call PollHotReload from the tick
// thread so reload callbacks observe consistent World/NetContext state.
func (r *Registry) PollHotReload() {
	r.mu.Lock()
	changed := make([]Entry, 0)
	for stem, entry := range r.entries {
		info, err := os.Stat(entry.Path)
		if err != nil {
			continue
		}
		if !info.ModTime().Equal(r.timestamps[entry.Path]) {
			r.timestamps[entry.Path] = info.ModTime()
			entry.Version++
			r.entries[stem] = entry
			changed = append(changed, entry)
		}
	}
	cb := r.onReload
	r.mu.Unlock()

	for _, entry := range changed {
		r.persist(entry.Path, entry.Version, r.timestamps[entry.Path])
		if cb != nil {
			cb(entry)
		}
	}
}

// Count returns the number of assets currently registered.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) cachedVersion(path string) uint64 {
	r.mu.Lock()
	db := r.cache
	r.mu.Unlock()
	if db == nil {
		return 1
	}
	val, err := db.Get([]byte(path), nil)
	if err != nil {
		if !errors.Is(err, leveldb.ErrNotFound) {
			r.log.Warn("asset registry cache read failed", "path", path, "error", err)
		}
		return 1
	}
	if len(val) < 8 {
		return 1
	}
	return binary.LittleEndian.Uint64(val[:8])
}

func (r *Registry) persist(path string, version uint64, mtime time.Time) {
	r.mu.Lock()
	db := r.cache
	r.mu.Unlock()
	if db == nil {
		return
	}
	buf := make([]byte, 8+8)
	binary.LittleEndian.PutUint64(buf[:8], version)
	binary.LittleEndian.PutUint64(buf[8:], uint64(mtime.UnixNano()))
	if err := db.Put([]byte(path), buf, nil); err != nil {
		r.log.Warn("asset registry cache write failed", "path", path, "error", err)
	}
}
