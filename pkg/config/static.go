package config

import (
	"sync"
	"time"
)

// Static is a fixed, mutable set of cache settings for tests and embedders
// that do not want file or environment lookup.
type Static struct {
	mu      sync.RWMutex
	enabled bool
	maxAge  time.Duration
	maxSize int
}

// NewStatic returns enabled settings with the default TTL and size.
func NewStatic() *Static {
	return &Static{enabled: true, maxAge: DefaultCacheMaxAge, maxSize: DefaultCacheMaxSize}
}

// SetEnabled toggles the cache.
func (s *Static) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// SetMaxAge changes the TTL.
func (s *Static) SetMaxAge(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxAge = d
}

// SetMaxSize changes the per-keyspace bound.
func (s *Static) SetMaxSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxSize = n
}

func (s *Static) CacheEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

func (s *Static) CacheMaxAge() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxAge
}

func (s *Static) CacheMaxSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}
