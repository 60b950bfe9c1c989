// Package favorites stores named snapshots of the full settings record.
// Unlike config saves, every mutation here is an explicit user action and
// persists immediately.
package favorites

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"crosshair-overlay/src/settings"
)

// Store maps favorite names to settings snapshots. Mutations come from
// the settings UI goroutine; the tray reads names and snapshots from its
// own goroutines, so access is mutex-guarded.
type Store struct {
	mu       sync.Mutex
	path     string
	entries  map[string]settings.Settings
	onChange func()
}

// Load reads the favorites file. A missing or malformed file yields an
// empty store.
func Load(path string) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]settings.Settings),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("favorites: ignoring malformed %s: %v", filepath.Base(path), err)
		return s
	}
	// Each snapshot merges over defaults, same as the config file.
	for name, doc := range raw {
		snap := settings.Defaults()
		if err := json.Unmarshal(doc, &snap); err != nil {
			log.Printf("favorites: skipping malformed entry %q: %v", name, err)
			continue
		}
		snap.Clamp()
		s.entries[name] = snap
	}
	return s
}

// OnChange registers a callback invoked after every mutation, so the tray
// can rebuild its favorites submenu.
func (s *Store) OnChange(fn func()) { s.onChange = fn }

// Save snapshots snap under name, overwriting any existing entry, and
// persists the whole map.
func (s *Store) Save(name string, snap settings.Settings) {
	s.mu.Lock()
	s.entries[name] = snap.Clone()
	s.persist()
	s.mu.Unlock()
	// Notify outside the lock: the callback typically reads Names().
	s.notify()
}

// Delete removes an entry if present and persists. Unknown names are a
// no-op but still persist and notify, keeping callers simple.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// Get returns a copy of the named snapshot.
func (s *Store) Get(name string) (settings.Settings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.entries[name]
	if !ok {
		return settings.Settings{}, false
	}
	return snap.Clone(), true
}

// Names returns all favorite names, sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored favorites.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) persist() {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		log.Printf("favorites: marshal failed: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("favorites: %v", err)
		return
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		log.Printf("favorites: failed to save: %v", err)
	}
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
