// Package itemstest provides an in-memory items.Store for tests.
package itemstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"items-api/backend/internal/items"
)

type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]items.Item
	err    error
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[int64]items.Item{}, now: time.Now}
}

// Fail makes every call return err until Fail(nil) is called.
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func (m *MemoryStore) Create(ctx context.Context, in items.Input) (items.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return items.Item{}, m.err
	}
	m.nextID++
	it := items.Item{ID: m.nextID, Name: clone(in.Name), Description: clone(in.Description)}
	m.rows[it.ID] = it
	return it, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]items.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]items.Item, 0, len(m.rows))
	for _, it := range m.rows {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id int64) (items.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return items.Item{}, m.err
	}
	it, ok := m.rows[id]
	if !ok {
		return items.Item{}, items.ErrNotFound
	}
	return it, nil
}

func (m *MemoryStore) Update(ctx context.Context, id int64, in items.Input) (items.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return items.Item{}, m.err
	}
	if _, ok := m.rows[id]; !ok {
		return items.Item{}, items.ErrNotFound
	}
	it := items.Item{ID: id, Name: clone(in.Name), Description: clone(in.Description)}
	m.rows[id] = it
	return it, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) (items.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return items.Item{}, m.err
	}
	it, ok := m.rows[id]
	if !ok {
		return items.Item{}, items.ErrNotFound
	}
	delete(m.rows, id)
	return it, nil
}

func (m *MemoryStore) ServerTime(ctx context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return time.Time{}, m.err
	}
	return m.now(), nil
}

var _ items.Store = (*MemoryStore)(nil)
