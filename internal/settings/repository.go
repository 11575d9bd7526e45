package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned by Get for a key that was never stored.
var ErrNotFound = errors.New("settings not found")

// Well-known settings keys.
const (
	KeyPrinter = "printer"
	KeyReceipt = "receipt"
	KeyTax     = "tax"
	KeyStore   = "store"
	KeyLabels  = "labels"
)

// Repository stores settings documents by key. Components receive one
// explicitly instead of reaching for global state.
type Repository interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	Keys(ctx context.Context) ([]string, error)
}

// Load decodes the document under key into a copy of def. A missing key
// yields def unchanged.
func Load[T any](ctx context.Context, repo Repository, key string, def T) (T, error) {
	raw, err := repo.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	out := def
	if err := json.Unmarshal(raw, &out); err != nil {
		return def, fmt.Errorf("decode settings %q: %w", key, err)
	}
	return out, nil
}

// Save encodes v and stores it under key.
func Save[T any](ctx context.Context, repo Repository, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode settings %q: %w", key, err)
	}
	return repo.Put(ctx, key, raw)
}

// Memory keeps settings in process memory.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]json.RawMessage)}
}

func (m *Memory) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.docs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append(json.RawMessage(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("settings %q: value is not valid JSON", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.docs))
	for k := range m.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
