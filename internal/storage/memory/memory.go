// Package memory is an in-process item store, optionally mirrored to a JSON
// file that is rewritten after every write. The last write wins; there is no
// locking across processes.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"ichinichi/internal/core"
	"ichinichi/internal/storage"
)

// DefaultFileName mirrors the key the browser app stored its items under.
const DefaultFileName = "ichinichi_items.json"

type Store struct {
	mu    sync.RWMutex
	path  string
	items []core.Item
}

// New returns an empty volatile store.
func New() *Store {
	return &Store{}
}

// NewFromFile loads items from path when it exists and persists every write
// back to it.
func NewFromFile(path string) (*Store, error) {
	s := &Store{path: path}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read items file: %w", err)
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.items); err != nil {
		return nil, fmt.Errorf("decode items file %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file, or "" for a volatile store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Insert(_ context.Context, item core.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(item.ID) >= 0 {
		return fmt.Errorf("insert %s: %w", item.ID, storage.ErrDuplicateID)
	}
	next := make([]core.Item, len(s.items), len(s.items)+1)
	copy(next, s.items)
	return s.commit(append(next, item))
}

func (s *Store) Update(_ context.Context, item core.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(item.ID)
	if i < 0 {
		return fmt.Errorf("update %s: %w", item.ID, core.ErrNotFound)
	}
	next := slices.Clone(s.items)
	next[i] = item
	return s.commit(next)
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}
	return s.commit(slices.Delete(slices.Clone(s.items), i, i+1))
}

func (s *Store) Get(_ context.Context, id string) (core.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Item{}, fmt.Errorf("get %s: %w", id, core.ErrNotFound)
	}
	return s.items[i], nil
}

// List returns a copy of the items in insertion order.
func (s *Store) List(_ context.Context) ([]core.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// commit persists next and only then makes it the current collection, so a
// failed file write leaves the store unchanged. Callers hold the write lock.
func (s *Store) commit(next []core.Item) error {
	if err := s.flush(next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// flush writes the whole collection through a temp file and rename.
func (s *Store) flush(items []core.Item) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if items == nil {
		items = []core.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return fmt.Errorf("write items file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace items file: %w", err)
	}
	return nil
}

var _ storage.ItemStore = (*Store)(nil)
