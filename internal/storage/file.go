package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ghodss/yaml"
)

// File keeps setpoints in a small YAML document, rewritten on every Set.
type File struct {
	path string

	mu   sync.Mutex
	vals map[string]int
}

// OpenFile loads path. A missing file is an empty store and is created on
// the first Set.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, vals: make(map[string]int)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &f.vals); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.vals == nil {
		f.vals = make(map[string]int)
	}
	return f, nil
}

func (f *File) Get(key string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vals[key]
	return v, ok, nil
}

// Set stores value and rewrites the file via a rename, so a power cut
// leaves either the old or the new document.
func (f *File) Set(key string, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.vals[key]
	f.vals[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.vals[key] = prev
		} else {
			delete(f.vals, key)
		}
		return err
	}
	return nil
}

func (f *File) flush() error {
	data, err := yaml.Marshal(f.vals)
	if err != nil {
		return fmt.Errorf("encode setpoints: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".setpoints-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
