package convocatoria

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Data is the whole persisted document.
type Data struct {
	Postings   []*Posting   `yaml:"postings"`
	Applicants []*Applicant `yaml:"applicants"`
}

// Store loads and saves the whole document at once.
type Store interface {
	Load(ctx context.Context) (*Data, error)
	Save(ctx context.Context, data *Data) error
}

// FileStore keeps the document in a YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load returns an empty document when the file does not exist or is empty.
func (s *FileStore) Load(ctx context.Context) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store %s: %w", s.path, err)
	}

	if len(raw) == 0 {
		return &Data{}, nil
	}

	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing store %s: %w", s.path, err)
	}
	return &data, nil
}

// Save rewrites the file through a temporary file in the same directory.
func (s *FileStore) Save(ctx context.Context, data *Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing store %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps an encoded copy of the document so callers never share
// pointers with it.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var data Data
	if len(s.raw) == 0 {
		return &data, nil
	}
	if err := yaml.Unmarshal(s.raw, &data); err != nil {
		return nil, fmt.Errorf("decoding memory store: %w", err)
	}
	return &data, nil
}

func (s *MemoryStore) Save(ctx context.Context, data *Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding memory store: %w", err)
	}

	s.mu.Lock()
	s.raw = out
	s.mu.Unlock()
	return nil
}
