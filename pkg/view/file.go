package view

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fractalview/pkg/errors"
)

const fileExt = ".toml"

// FileStore keeps each view in <dir>/<name>.toml.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store. An empty dir defaults to
// ~/.config/fractalview/views.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "fractalview", "views")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create view dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

func (s *FileStore) Save(ctx context.Context, v *View) error {
	if err := v.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := ReadFile(s.path(v.Name))
	if err != nil && !errors.Is(err, errors.ErrCodeViewNotFound) {
		return err
	}
	carry(v, existing)
	return WriteFile(s.path(v.Name), v)
}

func (s *FileStore) Load(ctx context.Context, name string) (*View, error) {
	if err := errors.ValidateViewName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ReadFile(s.path(name))
}

func (s *FileStore) List(ctx context.Context) ([]*View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read view dir: %w", err)
	}
	var views []*View
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		v, err := ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			// skip files that are not views
			continue
		}
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateViewName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return fmt.Errorf("remove view file: %w", err)
	}
	return nil
}

// Dir returns the directory holding the view files.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

// ReadFile decodes a TOML view file. A missing file is VIEW_NOT_FOUND.
func ReadFile(path string) (*View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(strings.TrimSuffix(filepath.Base(path), fileExt))
		}
		return nil, fmt.Errorf("read view file: %w", err)
	}
	var v View
	if _, err := toml.Decode(string(data), &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse view %s", path)
	}
	if _, err := v.Params(); err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteFile encodes v as TOML at path.
func WriteFile(path string, v *View) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode view %q", v.Name)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write view file: %w", err)
	}
	return nil
}
