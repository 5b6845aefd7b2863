package hexmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// Store holds the parsed map assets and optionally reloads them when the
// files change on disk.
type Store struct {
	dir string

	mu         sync.RWMutex
	locations  *Locations
	settlement *Settlement
	loadedAt   time.Time

	debounce time.Duration
	watcher  *fsnotify.Watcher
	pending  map[string]time.Time
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewStore creates a store for the given asset directory. Call Load to
// read the files.
func NewStore(dir string) *Store {
	return &Store{
		dir:      dir,
		debounce: defaultDebounce,
		pending:  make(map[string]time.Time),
	}
}

// SetDebounce changes how long the watcher waits after the last write
// before reloading a file.
func (s *Store) SetDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = d
}

// Dir returns the asset directory
func (s *Store) Dir() string {
	return s.dir
}

// Load reads both asset files. A file that fails to load keeps its
// previous contents; the returned error joins every failure.
func (s *Store) Load() error {
	return errors.Join(s.reload(LocationsFile), s.reload(SettlementFile))
}

func (s *Store) reload(name string) error {
	path := filepath.Join(s.dir, name)
	switch name {
	case LocationsFile:
		l, err := readLocations(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		s.mu.Lock()
		s.locations = l
		s.loadedAt = time.Now()
		s.mu.Unlock()
		slog.Info("map assets loaded", "file", name, "spots", len(l.Spots), "banks", len(l.Banks))
	case SettlementFile:
		st, err := readSettlement(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		s.mu.Lock()
		s.settlement = st
		s.loadedAt = time.Now()
		s.mu.Unlock()
		slog.Info("map assets loaded", "file", name, "spots", len(st.Spots), "zones", len(st.Zones))
	}
	return nil
}

// Locations returns the live map grid
func (s *Store) Locations() (*Locations, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.locations == nil {
		return nil, fmt.Errorf("%s: %w", LocationsFile, ErrAssetUnavailable)
	}
	return s.locations, nil
}

// Settlement returns the settling phase map
func (s *Store) Settlement() (*Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settlement == nil {
		return nil, fmt.Errorf("%s: %w", SettlementFile, ErrAssetUnavailable)
	}
	return s.settlement, nil
}

// LoadedAt returns when an asset was last (re)loaded
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Watch starts reloading assets when they change. It returns immediately;
// Stop ends the watch.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		s.mu.Unlock()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	s.watcher = w
	s.running = true
	s.stopCh = stopCh
	s.doneCh = doneCh
	s.mu.Unlock()

	slog.Info("watching map assets", "dir", s.dir)
	go s.run(ctx, w, stopCh, doneCh)
	return nil
}

// Stop ends the watch and waits for the watcher goroutine to exit
func (s *Store) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh, w := s.stopCh, s.doneCh, s.watcher
	s.watcher = nil
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
	if err := w.Close(); err != nil {
		slog.Error("close map watcher", "error", err)
	}
}

func (s *Store) run(ctx context.Context, w *fsnotify.Watcher, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)
	defer s.release(w)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("map watcher error", "error", err)
		case <-ticker.C:
			s.flush()
		}
	}
}

// release marks the watch as ended when the loop exits on its own, so a
// later Watch starts a fresh one. After Stop the watcher is no longer ours.
func (s *Store) release(w *fsnotify.Watcher) {
	s.mu.Lock()
	if s.watcher != w {
		s.mu.Unlock()
		return
	}
	s.watcher = nil
	s.running = false
	s.mu.Unlock()

	if err := w.Close(); err != nil {
		slog.Error("close map watcher", "error", err)
	}
}

// Watching reports whether a watch is active
func (s *Store) Watching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Store) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if name != LocationsFile && name != SettlementFile {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	s.mu.Lock()
	s.pending[name] = time.Now()
	s.mu.Unlock()
}

// flush reloads files whose last change is older than the debounce window
func (s *Store) flush() {
	s.mu.Lock()
	var due []string
	for name, at := range s.pending {
		if time.Since(at) >= s.debounce {
			due = append(due, name)
			delete(s.pending, name)
		}
	}
	s.mu.Unlock()

	for _, name := range due {
		if err := s.reload(name); err != nil {
			slog.Warn("map asset reload failed, keeping previous", "file", name, "error", err)
		}
	}
}
