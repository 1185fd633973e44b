// Package observability provides hooks for metrics and tracing.
//
// Instrumentation is optional and carries no dependency on a specific
// backend. Consumers register hooks at startup to receive events about
// analysis runs, cache activity and registry calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, so libraries never import a metrics backend.
// The prom subpackage provides a Prometheus implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetCacheHooks(m)
//	    observability.SetHTTPHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Analysis().OnAnalyzeStart(ctx, len(deps))
//	// ... fetch licenses ...
//	observability.Analysis().OnAnalyzeComplete(ctx, len(deps), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Cache keyspace labels passed to [CacheHooks].
const (
	KeyspaceInfo = "info"
	KeyspaceText = "text"
)

// =============================================================================
// Analysis Hooks
// =============================================================================

// AnalysisHooks receives events from dependency analysis runs.
type AnalysisHooks interface {
	OnAnalyzeStart(ctx context.Context, dependencies int)
	OnAnalyzeComplete(ctx context.Context, dependencies int, duration time.Duration, err error)

	// OnFetch records one license resolution. cached is true when the
	// result came from the metadata cache.
	OnFetch(ctx context.Context, ecosystem string, cached bool, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the metadata cache. Cache operations are
// in-memory and take no context.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(keyspace string)

	// OnCacheMiss records a cache miss, including stale entries.
	OnCacheMiss(keyspace string)

	// OnCacheSet records a write and the keyspace size after it.
	OnCacheSet(keyspace string, size int)

	// OnCacheEvict records entries removed by eviction or expiry.
	OnCacheEvict(keyspace string, count int)

	// OnCacheFlush records a snapshot write.
	OnCacheFlush(bytes int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAnalysisHooks is a no-op implementation of AnalysisHooks.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnAnalyzeStart(context.Context, int)                          {}
func (NoopAnalysisHooks) OnAnalyzeComplete(context.Context, int, time.Duration, error) {}
func (NoopAnalysisHooks) OnFetch(context.Context, string, bool, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(string)                      {}
func (NoopCacheHooks) OnCacheMiss(string)                     {}
func (NoopCacheHooks) OnCacheSet(string, int)                 {}
func (NoopCacheHooks) OnCacheEvict(string, int)               {}
func (NoopCacheHooks) OnCacheFlush(int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers custom analysis hooks.
// This should be called once at application startup before any analysis runs.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
