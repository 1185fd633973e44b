package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Analysis hooks
	a := NoopAnalysisHooks{}
	a.OnAnalyzeStart(ctx, 12)
	a.OnFetch(ctx, "npm", true, time.Millisecond, nil)
	a.OnAnalyzeComplete(ctx, 12, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(KeyspaceInfo)
	c.OnCacheMiss(KeyspaceText)
	c.OnCacheSet(KeyspaceInfo, 10)
	c.OnCacheEvict(KeyspaceInfo, 1)
	c.OnCacheFlush(1024, time.Millisecond, nil)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/lodash")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/lodash", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/lodash", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Analysis() should return NoopAnalysisHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customAnalysis := &testAnalysisHooks{}
	SetAnalysisHooks(customAnalysis)
	if Analysis() != customAnalysis {
		t.Error("SetAnalysisHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Reset() should restore NoopAnalysisHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testCacheHooks{}
	SetCacheHooks(custom)

	// Setting nil should be ignored
	SetCacheHooks(nil)

	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testAnalysisHooks struct{ NoopAnalysisHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
