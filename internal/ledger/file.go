package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the ledger as one JSON document on disk, written atomically
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger file path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	return &FileStore{path: path}, nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) load() (document, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(document), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	doc := make(document)
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}

	return doc, nil
}

// writes to a temp file in the same directory and renames it over the old one
func (f *FileStore) save(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}

	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()     //nolint:errcheck,gosec
		os.Remove(name) //nolint:errcheck,gosec
		return fmt.Errorf("failed to write ledger: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(name) //nolint:errcheck,gosec
		return fmt.Errorf("failed to write ledger: %w", err)
	}

	if err := os.Rename(name, f.path); err != nil {
		os.Remove(name) //nolint:errcheck,gosec
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	return nil
}

// loads, applies fn and saves when fn reports a change
func (f *FileStore) update(fn func(document) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	if !fn(doc) {
		return nil
	}

	return f.save(doc)
}

func (f *FileStore) Commit(_ context.Context, owner string, entry Entry, today string, limit int) (UsageCounter, error) {
	var counter UsageCounter

	err := f.update(func(doc document) bool {
		counter = doc.commit(owner, entry, today, limit)
		return true
	})

	return counter, err
}

func (f *FileStore) Append(_ context.Context, owner string, entry Entry) error {
	return f.update(func(doc document) bool {
		doc.append(owner, entry)
		return true
	})
}

func (f *FileStore) Counter(_ context.Context, owner string) (UsageCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return UsageCounter{}, err
	}

	if rec, ok := doc[owner]; ok {
		return rec.Usage, nil
	}

	return UsageCounter{}, nil
}

func (f *FileStore) History(_ context.Context, owner string, limit int) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}

	return doc.history(owner, limit), nil
}

func (f *FileStore) Clear(_ context.Context, owner string) (int, error) {
	var n int

	err := f.update(func(doc document) bool {
		n = doc.clear(owner)
		return n > 0
	})

	return n, err
}
