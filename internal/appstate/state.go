// Package appstate persists the tree view state between sessions: the watched
// folder, the global selection and the expanded sets of both panes.
package appstate

import (
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tormodhaugland/gsxpm/internal/tree"
)

const (
	keyCurrentFolder    = "current_folder"
	keySelectedFiles    = "selected_files"
	keyExpandedIDs      = "expanded_ids"
	keyLocalExpandedIDs = "local_expanded_ids"
)

// State is the persisted snapshot. A nil CurrentFolder means no folder is watched.
type State struct {
	CurrentFolder    *string    `json:"currentFolder" yaml:"current_folder"`
	SelectedFiles    tree.IDSet `json:"selectedFiles" yaml:"selected_files"`
	ExpandedIDs      tree.IDSet `json:"expandedIds" yaml:"expanded_ids"`
	LocalExpandedIDs tree.IDSet `json:"localExpandedIds" yaml:"local_expanded_ids"`
}

// Folder returns the watched folder or "".
func (s State) Folder() string {
	if s.CurrentFolder == nil {
		return ""
	}
	return *s.CurrentFolder
}

// WithFolder returns a copy of s watching folder.
func (s State) WithFolder(folder string) State {
	s.CurrentFolder = &folder
	return s
}

// Store reads and writes the settings file. Keys it does not know about are
// preserved on save.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (st *Store) Path() string {
	return st.path
}

// Load returns the saved state. A missing file or missing keys yield empty sets.
func (st *Store) Load() (State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	raw, err := st.read()
	if err != nil {
		return State{}, err
	}

	s := State{
		SelectedFiles:    tree.IDSet{},
		ExpandedIDs:      tree.IDSet{},
		LocalExpandedIDs: tree.IDSet{},
	}
	if v, ok := raw[keyCurrentFolder]; ok {
		var folder *string
		if err := json.Unmarshal(v, &folder); err != nil {
			return State{}, fmt.Errorf("decoding %s: %w", keyCurrentFolder, err)
		}
		s.CurrentFolder = folder
	}
	for key, dst := range map[string]*tree.IDSet{
		keySelectedFiles:    &s.SelectedFiles,
		keyExpandedIDs:      &s.ExpandedIDs,
		keyLocalExpandedIDs: &s.LocalExpandedIDs,
	} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var ids tree.IDSet
		if err := json.Unmarshal(v, &ids); err != nil {
			return State{}, fmt.Errorf("decoding %s: %w", key, err)
		}
		if ids != nil {
			*dst = ids
		}
	}
	return s, nil
}

// Save writes s. A nil or empty CurrentFolder keeps the previously saved
// folder; the three id sets are always overwritten.
func (st *Store) Save(s State) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	raw, err := st.read()
	if err != nil {
		return err
	}
	if s.CurrentFolder != nil && *s.CurrentFolder != "" {
		raw[keyCurrentFolder] = mustJSON(*s.CurrentFolder)
	}
	raw[keySelectedFiles] = mustJSON(s.SelectedFiles)
	raw[keyExpandedIDs] = mustJSON(s.ExpandedIDs)
	raw[keyLocalExpandedIDs] = mustJSON(s.LocalExpandedIDs)
	return st.write(raw)
}

// Clear stops watching: the folder key is removed and every set emptied.
func (st *Store) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	raw, err := st.read()
	if err != nil {
		return err
	}
	delete(raw, keyCurrentFolder)
	raw[keySelectedFiles] = mustJSON(tree.IDSet{})
	raw[keyExpandedIDs] = mustJSON(tree.IDSet{})
	raw[keyLocalExpandedIDs] = mustJSON(tree.IDSet{})
	return st.write(raw)
}

func (st *Store) read() (map[string]json.RawMessage, error) {
	raw := make(map[string]json.RawMessage)
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return raw, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}
	if len(data) == 0 {
		return raw, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing state %s: %w", st.path, err)
	}
	return raw, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (st *Store) write(raw map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".app-settings-*.json")
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp.Name(), st.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
