// Package storetest provides an in-memory store.Hash for handler and
// repository tests.
package storetest

import (
	"context"
	"strings"
	"sync"

	"github.com/lumeno/accounts/internal/store"
)

var _ store.Hash = (*Mem)(nil)

// Mem is a map-backed store.Hash. Err, when set, makes every operation
// fail with it; DeleteErr fails only deletes of DeleteErrKey, for
// exercising partial-failure reporting.
type Mem struct {
	mu           sync.Mutex
	data         map[string]map[string]string
	Err          error
	DeleteErrKey string
	DeleteErr    error
}

func NewMem() *Mem {
	return &Mem{data: make(map[string]map[string]string)}
}

// Seed writes a record directly, bypassing error injection.
func (m *Mem) Seed(key string, fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := make(map[string]string, len(fields))
	for k, v := range fields {
		rec[k] = v
	}
	m.data[key] = rec
}

// Record returns a copy of the stored record, nil if absent.
func (m *Mem) Record(key string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[key]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func (m *Mem) Exists(_ context.Context, key string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *Mem) GetAll(_ context.Context, key string) (map[string]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Record(key), nil
}

func (m *Mem) SetFields(_ context.Context, key string, fields map[string]string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[key]
	if !ok {
		rec = make(map[string]string, len(fields))
		m.data[key] = rec
	}
	for k, v := range fields {
		rec[k] = v
	}
	return nil
}

func (m *Mem) Delete(_ context.Context, key string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if m.DeleteErr != nil && key == m.DeleteErrKey {
		return 0, m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return 0, nil
	}
	delete(m.data, key)
	return 1, nil
}

func (m *Mem) ScanKeys(_ context.Context, pattern string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	prefix := strings.TrimSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *Mem) TypeOf(_ context.Context, key string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return "hash", nil
	}
	return "none", nil
}

func (m *Mem) HashLen(_ context.Context, key string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data[key])), nil
}
