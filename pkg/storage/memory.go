package storage

import (
	"context"
	"slices"
	"sync"
)

// Memory is a process-local store. It records how many writes it received and
// publishes the key of every write on [Memory.Written], which makes it the
// store of choice for tests of debounced persistence.
type Memory struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	writes  int
	failErr error
	written chan string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		blobs:   make(map[string][]byte),
		written: make(chan string, 64),
	}
}

// Get returns a copy of the blob stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	return slices.Clone(data), ok, nil
}

// Update stores a copy of data under key, or returns the error configured
// with [Memory.FailWrites].
func (m *Memory) Update(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	if m.failErr != nil {
		err := m.failErr
		m.mu.Unlock()
		return err
	}
	m.blobs[key] = slices.Clone(data)
	m.writes++
	m.mu.Unlock()

	select {
	case m.written <- key:
	default:
	}
	return nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

// Writes returns the number of successful Update calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Written publishes the key of each successful Update. Sends are dropped
// when nobody is reading and the buffer is full.
func (m *Memory) Written() <-chan string { return m.written }

// FailWrites makes every subsequent Update return err. Pass nil to recover.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

var _ Store = (*Memory)(nil)
