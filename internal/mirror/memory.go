package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"codeberg.org/boomline/server/internal/ledger"
)

// Memory mirrors into a map, failing deletes of the IDs listed in FailDelete
type Memory struct {
	mu         sync.Mutex
	docs       map[string][]ledger.Entry
	FailDelete map[string]bool
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]ledger.Entry), FailDelete: make(map[string]bool)}
}

func (m *Memory) Add(_ context.Context, owner string, entry ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.Prompt = sanitize(entry.Prompt)
	m.docs[owner] = append(m.docs[owner], entry)

	return nil
}

func (m *Memory) Entries(owner string) []ledger.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]ledger.Entry(nil), m.docs[owner]...)
}

func (m *Memory) Clear(_ context.Context, owner string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		kept []ledger.Entry
		errs []error
	)

	for _, entry := range m.docs[owner] {
		if m.FailDelete[entry.ID] {
			kept = append(kept, entry)
			errs = append(errs, fmt.Errorf("%s: delete refused", entry.ID))
		}
	}

	deleted := len(m.docs[owner]) - len(kept)

	if len(kept) == 0 {
		delete(m.docs, owner)
	} else {
		m.docs[owner] = kept
	}

	if len(errs) > 0 {
		return deleted, &PartialClearError{Deleted: deleted, Failed: len(errs), Err: errors.Join(errs...)}
	}

	return deleted, nil
}
