// Package storage persists the deck list and view settings in a
// key-value store, each as one JSON value under its own key.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by a KV when a write does not fit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is a string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV is an in-process KV. The zero value is ready to use.
type MemoryKV struct {
	// Quota bounds the total size of all values when positive.
	Quota int64
	// FailReads and FailWrites, when set, are returned by every Get and
	// Set/Delete respectively.
	FailReads  error
	FailWrites error

	mu   sync.Mutex
	data map[string]string
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads != nil {
		return "", false, m.FailReads
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	if m.Quota > 0 {
		var others int64
		for k, v := range m.data {
			if k != key {
				others += int64(len(v))
			}
		}
		if others+int64(len(value)) > m.Quota {
			return ErrQuotaExceeded
		}
	}
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	delete(m.data, key)
	return nil
}
