package plays

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/radieske/parlay-feed/internal/feed-service/kv"
)

// memStore é um kv.Store em memória que guarda o JSON serializado
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	getErr error
	setErr error

	// hooks para testes de concorrência
	afterGet func()
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	if m.getErr != nil {
		m.mu.Unlock()
		return nil, false, m.getErr
	}
	b, ok := m.data[key]
	m.mu.Unlock()

	if m.afterGet != nil {
		m.afterGet()
	}
	if !ok {
		return nil, false, nil
	}
	return kv.Normalize(b), true, nil
}

func (m *memStore) Set(_ context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.sets++
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }

var errStoreDown = errors.New("store down")
