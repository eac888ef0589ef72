// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package authflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// # Remember-Me Persistence

// Remembered is the locally persisted login state.
type Remembered struct {
	Identifier string `json:"identifier"`
	Token      string `json:"token,omitempty"`
}

// RememberStore persists the remembered identifier and session token between
// runs of the client.
type RememberStore interface {
	// Load returns the remembered state, or a zero value when nothing is stored.
	Load() (Remembered, error)
	// Save replaces the remembered state.
	Save(state Remembered) error
	// Clear removes any remembered state.
	Clear() error
}

// FileRememberStore keeps the remembered state in a JSON file, typically
// under the user's config directory.
type FileRememberStore struct {
	mu   sync.Mutex
	path string
}

// NewFileRememberStore creates a store writing to the given path.
func NewFileRememberStore(path string) *FileRememberStore {
	return &FileRememberStore{path: path}
}

func (store *FileRememberStore) Load() (Remembered, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	raw, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Remembered{}, nil
		}
		return Remembered{}, fmt.Errorf("remember_store_read_failed: %w", err)
	}

	var state Remembered
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt file is treated as empty rather than blocking login.
		return Remembered{}, nil
	}
	return state, nil
}

func (store *FileRememberStore) Save(state Remembered) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("remember_store_marshal_failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(store.path), 0o700); err != nil {
		return fmt.Errorf("remember_store_mkdir_failed: %w", err)
	}
	// 0600: the file can hold a live session token.
	if err := os.WriteFile(store.path, raw, 0o600); err != nil {
		return fmt.Errorf("remember_store_write_failed: %w", err)
	}
	return nil
}

func (store *FileRememberStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.Remove(store.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remember_store_clear_failed: %w", err)
	}
	return nil
}

// MemoryRememberStore is the in-process RememberStore used by tests and by
// clients that opt out of persistence.
type MemoryRememberStore struct {
	mu    sync.Mutex
	state Remembered
	set   bool
}

func (store *MemoryRememberStore) Load() (Remembered, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if !store.set {
		return Remembered{}, nil
	}
	return store.state, nil
}

func (store *MemoryRememberStore) Save(state Remembered) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.state = state
	store.set = true
	return nil
}

func (store *MemoryRememberStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.state = Remembered{}
	store.set = false
	return nil
}
