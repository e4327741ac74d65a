package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ChannelMonitor/internal/ports"
)

// FileStore persists the channel → last-processed-video mapping as a single
// flat JSON document, rewritten wholesale on every save.
type FileStore struct {
	path string
}

var _ ports.StateStore = (*FileStore)(nil)

// NewFileStore points the store at the given state file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full state document. A missing or corrupt file yields an
// empty mapping, not an error: the monitor then treats every channel as new.
func (s *FileStore) Load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return map[string]string{}, nil
	}
	if mapping == nil {
		mapping = map[string]string{}
	}
	return mapping, nil
}

// Save overwrites the state document wholesale. The write goes through a
// temporary file and rename so a crash mid-commit never truncates the state.
func (s *FileStore) Save(mapping map[string]string) error {
	raw, err := json.MarshalIndent(mapping, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
