// Package manager owns the process-wide dataset generation: one immutable
// Table plus the Resolver built over it, held behind an atomic pointer.
// Reload builds the next generation off to the side and swaps it in; readers
// keep whatever snapshot they started with.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/duynguyendang/digivolve/pkg/common/errors"
	"github.com/duynguyendang/digivolve/pkg/dataset"
	"github.com/duynguyendang/digivolve/pkg/evolution"
)

const (
	LookupCacheSize = 256
	ReloadDebounce  = 300 * time.Millisecond
)

// state is one generation: a table, its resolver and its lookup cache. The
// cache lives inside the generation so stale entries cannot survive a swap.
type state struct {
	table    *dataset.Table
	resolver *evolution.Resolver
	lookups  *lru.Cache[string, evolution.Result]
}

// Manager holds the current generation and reload bookkeeping.
type Manager struct {
	path string
	opts dataset.Options

	current  atomic.Pointer[state]
	mu       sync.Mutex // serializes Reload
	reloads  atomic.Uint64
	failures atomic.Uint64
}

// New creates a Manager for the dataset at path. Nothing is loaded yet;
// call Reload once before serving.
func New(path string, opts dataset.Options) *Manager {
	return &Manager{path: path, opts: opts}
}

// Path returns the dataset file the manager loads from.
func (m *Manager) Path() string { return m.path }

// Loaded reports whether a generation is available.
func (m *Manager) Loaded() bool { return m.current.Load() != nil }

// Reloads returns the number of successful loads.
func (m *Manager) Reloads() uint64 { return m.reloads.Load() }

// Failures returns the number of failed loads.
func (m *Manager) Failures() uint64 { return m.failures.Load() }

// Reload loads the dataset file and swaps the new generation in. On failure
// the previous generation keeps serving and the load error is returned.
func (m *Manager) Reload() (*dataset.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tbl, err := dataset.LoadWithOptions(m.path, m.opts)
	if err != nil {
		m.failures.Add(1)
		return nil, err
	}

	cache, _ := lru.New[string, evolution.Result](LookupCacheSize)
	m.current.Store(&state{
		table:    tbl,
		resolver: evolution.NewResolver(tbl),
		lookups:  cache,
	})
	m.reloads.Add(1)
	return tbl, nil
}

// Table returns the current generation's table, or ErrNotLoaded before the
// first successful Reload.
func (m *Manager) Table() (*dataset.Table, error) {
	st := m.current.Load()
	if st == nil {
		return nil, errors.ErrNotLoaded
	}
	return st.table, nil
}

// Resolver returns the current generation's resolver, or ErrNotLoaded.
func (m *Manager) Resolver() (*evolution.Resolver, error) {
	st := m.current.Load()
	if st == nil {
		return nil, errors.ErrNotLoaded
	}
	return st.resolver, nil
}

// Lookup resolves name through the generation's cache. The key is the
// normalized name so casing variants share an entry. NotFound outcomes are
// not cached: they echo the query verbatim, which a shared entry would
// garble.
func (m *Manager) Lookup(name string) (evolution.Result, error) {
	st := m.current.Load()
	if st == nil {
		return nil, errors.ErrNotLoaded
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if res, ok := st.lookups.Get(key); ok {
		return res, nil
	}

	res := st.resolver.Resolve(name)
	if _, miss := res.(evolution.NotFound); !miss {
		st.lookups.Add(key, res)
	}
	return res, nil
}

// Watch reloads the dataset whenever its file changes, until ctx is done.
// Exporters replace files with rename+create+write bursts, so events are
// debounced before the reload fires. A failed reload keeps the current
// generation serving.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: a watch placed on the file itself is lost when
	// a writer replaces the file.
	dir := filepath.Dir(m.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	slog.Info("watching dataset", "path", m.path)

	target := filepath.Base(m.path)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(ReloadDebounce)
				timerC = timer.C
			} else {
				timer.Reset(ReloadDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			tbl, err := m.Reload()
			if err != nil {
				slog.Error("dataset reload failed, keeping previous table", "error", err)
				continue
			}
			slog.Info("dataset reloaded", "rows", tbl.Len())

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
