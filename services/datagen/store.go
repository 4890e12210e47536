// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datagen

import (
	"sort"
	"sync"
)

// Store is an in-memory dataset registry keyed by dataset name.
//
// Safe for concurrent use. Datasets are treated as immutable once stored;
// a reload replaces the entry rather than mutating it.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{datasets: make(map[string]*Dataset)}
}

// Put stores a dataset, replacing any existing entry with the same name.
func (s *Store) Put(d *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[d.Name] = d
}

// Get returns the dataset with the given name.
func (s *Store) Get(name string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[name]
	return d, ok
}

// List returns the stored dataset names, sorted.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove deletes a dataset. Returns true if it existed.
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.datasets[name]
	delete(s.datasets, name)
	return ok
}

// Len returns the number of stored datasets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}
