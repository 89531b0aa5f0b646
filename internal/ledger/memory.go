package ledger

import (
	"context"
	"sync"
)

// per-owner state shared by the memory and file stores
type record struct {
	History []Entry      `json:"history"`
	Usage   UsageCounter `json:"usage"`
}

type document map[string]*record

func (d document) get(owner string) *record {
	rec, ok := d[owner]
	if !ok {
		rec = &record{}
		d[owner] = rec
	}

	return rec
}

func (d document) commit(owner string, entry Entry, today string, limit int) UsageCounter {
	rec := d.get(owner)
	rec.History = append([]Entry{entry}, rec.History...)

	if rec.Usage.DateKey != today {
		rec.Usage = UsageCounter{DateKey: today}
	}

	rec.Usage.Count++
	if limit > 0 && rec.Usage.Count > limit {
		rec.Usage.Count = limit
	}

	return rec.Usage
}

func (d document) append(owner string, entry Entry) {
	rec := d.get(owner)
	rec.History = append([]Entry{entry}, rec.History...)
}

func (d document) history(owner string, limit int) []Entry {
	rec, ok := d[owner]
	if !ok {
		return []Entry{}
	}

	n := len(rec.History)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Entry, n)
	copy(out, rec.History[:n])

	return out
}

func (d document) clear(owner string) int {
	rec, ok := d[owner]
	if !ok {
		return 0
	}

	n := len(rec.History)
	rec.History = nil

	return n
}

// MemoryStore keeps everything in process, used in tests and single-instance dev
type MemoryStore struct {
	mu  sync.Mutex
	doc document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: make(document)}
}

func (m *MemoryStore) Commit(_ context.Context, owner string, entry Entry, today string, limit int) (UsageCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.doc.commit(owner, entry, today, limit), nil
}

func (m *MemoryStore) Append(_ context.Context, owner string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc.append(owner, entry)

	return nil
}

func (m *MemoryStore) Counter(_ context.Context, owner string) (UsageCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.doc[owner]; ok {
		return rec.Usage, nil
	}

	return UsageCounter{}, nil
}

func (m *MemoryStore) History(_ context.Context, owner string, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.doc.history(owner, limit), nil
}

func (m *MemoryStore) Clear(_ context.Context, owner string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.doc.clear(owner), nil
}
