// Package answers holds the single source of truth for everything the
// user has entered, keyed by "stepId.fieldId".
package answers

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Key builds the composite answer key for a step field.
func Key(stepID, fieldID string) string {
	return stepID + "." + fieldID
}

// Syncer receives a copy of the answer map after each write. Implementations
// are called from a background goroutine; errors are swallowed and logged,
// never surfaced to the writer.
type Syncer interface {
	Sync(values map[string]any) error
}

// Store is a write-through key-value store. Every Set persists the full
// answer map to the backing file (when one is configured) and triggers a
// best-effort background sync.
type Store struct {
	mu     sync.Mutex
	values map[string]any
	path   string
	syncer Syncer
	warnf  func(format string, args ...any)
}

// NewStore creates a store persisting to path. An empty path keeps the
// store memory-only.
func NewStore(path string) *Store {
	return &Store{
		values: map[string]any{},
		path:   path,
		warnf:  log.Printf,
	}
}

// SetSyncer installs the best-effort remote sync target.
func (s *Store) SetSyncer(sync Syncer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncer = sync
}

// Load reads previously persisted answers. A missing file is not an
// error; a corrupt one is reported and leaves the store empty.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if values != nil {
		s.values = values
	}
	return nil
}

// Get returns the answer for (stepID, fieldID) as a string, or fallback
// when absent or not a string. It never fails.
func (s *Store) Get(stepID, fieldID, fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[Key(stepID, fieldID)].(string); ok {
		return v
	}
	return fallback
}

// GetBool returns the boolean answer for (stepID, fieldID), or fallback
// when absent or not a boolean.
func (s *Store) GetBool(stepID, fieldID string, fallback bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[Key(stepID, fieldID)].(bool); ok {
		return v
	}
	return fallback
}

// Set overwrites the answer for (stepID, fieldID). The write is persisted
// immediately; persistence failures are logged and the session continues
// in memory. When a syncer is configured the new state is pushed to it in
// the background, fire-and-forget.
func (s *Store) Set(stepID, fieldID string, value any) {
	s.mu.Lock()
	s.values[Key(stepID, fieldID)] = value
	snapshot := s.copyLocked()
	sync := s.syncer
	s.mu.Unlock()

	s.persist(snapshot)
	if sync != nil {
		go func() {
			if err := sync.Sync(snapshot); err != nil {
				s.warnf("answer sync failed: %v", err)
			}
		}()
	}
}

// Reset clears every answer and removes the persisted file.
func (s *Store) Reset() {
	s.mu.Lock()
	s.values = map[string]any{}
	s.mu.Unlock()
	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			s.warnf("answer reset: %v", err)
		}
	}
}

// All returns a copy of the full answer map.
func (s *Store) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Store) persist(values map[string]any) {
	if s.path == "" {
		return
	}
	raw, err := yaml.Marshal(values)
	if err != nil {
		s.warnf("answer persist: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.warnf("answer persist: %v", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.warnf("answer persist: %v", err)
	}
}
