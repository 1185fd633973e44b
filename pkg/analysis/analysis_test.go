package analysis

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/licensetower/pkg/cache"
	"github.com/matzehuels/licensetower/pkg/compat"
	"github.com/matzehuels/licensetower/pkg/config"
	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
	"github.com/matzehuels/licensetower/pkg/manifest"
	"github.com/matzehuels/licensetower/pkg/storage"
)

// fakeFetcher serves licenses from a map. Names in slow block until the
// context ends; names missing from licenses fail.
type fakeFetcher struct {
	eco      license.Ecosystem
	licenses map[string]string
	slow     map[string]bool
	delay    time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) Ecosystem() license.Ecosystem { return f.eco }

func (f *fakeFetcher) FetchLicense(ctx context.Context, name, version string) (*license.Info, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	if f.slow[name] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	l, ok := f.licenses[name]
	if !ok {
		return nil, stderrors.New("registry unavailable")
	}
	return &license.Info{Name: name, Version: version, License: l}, nil
}

func newCache(t *testing.T) (*cache.Cache, *config.Static) {
	t.Helper()
	settings := config.NewStatic()
	c := cache.New(settings, cache.Options{Clock: clockwork.NewFakeClock()})
	c.Init(context.Background(), storage.NewMemory())
	return c, settings
}

func dep(eco license.Ecosystem, name, version string) manifest.Dependency {
	return manifest.Dependency{Ecosystem: eco, Name: name, Version: version}
}

func TestAnalyze(t *testing.T) {
	c, _ := newCache(t)
	npm := &fakeFetcher{eco: license.Npm, licenses: map[string]string{"left-pad": "mit"}}
	crates := &fakeFetcher{eco: license.Crates, licenses: map[string]string{"serde": "MIT OR Apache-2.0"}}
	pypi := &fakeFetcher{eco: license.PyPI, licenses: map[string]string{"gpl-thing": "GPL-3.0"}}

	a := New(Options{Cache: c, Fetchers: []integrations.Fetcher{npm, crates, pypi}})
	deps := []manifest.Dependency{
		dep(license.Npm, "left-pad", "1.3.0"),
		dep(license.Crates, "serde", "1.0.193"),
		dep(license.PyPI, "gpl-thing", ""),
		dep(license.NuGet, "Newtonsoft.Json", "13.0.3"),
	}

	report, err := a.Analyze(context.Background(), deps)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.ID == "" {
		t.Error("report has no ID")
	}
	if len(report.Dependencies) != len(deps) {
		t.Fatalf("got %d results, want %d", len(report.Dependencies), len(deps))
	}
	for i, r := range report.Dependencies {
		if r.Dependency != deps[i] {
			t.Errorf("result %d is for %v, want %v", i, r.Dependency, deps[i])
		}
	}
	if got := report.Dependencies[3].Info.License; got != license.Unknown {
		t.Errorf("unsupported ecosystem license = %q, want %q", got, license.Unknown)
	}
	if report.Dependencies[3].Error == "" {
		t.Error("unsupported ecosystem result has no error")
	}

	wantLicenses := []string{"MIT", "Apache-2.0", "GPL-3.0", license.Unknown}
	if !slices.Equal(report.Licenses, wantLicenses) {
		t.Errorf("Licenses = %v, want %v", report.Licenses, wantLicenses)
	}
	if report.Compatibility.OverallCompatible {
		t.Error("expected Unknown to make the set incompatible")
	}
	if report.Risk != compat.RiskHigh {
		t.Errorf("Risk = %q, want %q", report.Risk, compat.RiskHigh)
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations")
	}

	want := Summary{Total: 4, Fetched: 3, Failed: 1}
	if report.Summary != want {
		t.Errorf("Summary = %+v, want %+v", report.Summary, want)
	}

	// A second scan is served from the cache.
	report, err = a.Analyze(context.Background(), deps)
	if err != nil {
		t.Fatal(err)
	}
	want = Summary{Total: 4, Cached: 3, Failed: 1}
	if report.Summary != want {
		t.Errorf("second Summary = %+v, want %+v", report.Summary, want)
	}
	for _, f := range []*fakeFetcher{npm, crates, pypi} {
		if got := f.calls.Load(); got != 1 {
			t.Errorf("%s fetcher called %d times, want 1", f.eco, got)
		}
	}
}

func TestResolveCachesFailures(t *testing.T) {
	c, _ := newCache(t)
	f := &fakeFetcher{eco: license.Npm}
	a := New(Options{Cache: c, Fetchers: []integrations.Fetcher{f}})
	ctx := context.Background()

	r, err := a.Resolve(ctx, dep(license.Npm, "broken", "1.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Info.License != license.Unknown || r.Cached || r.Error == "" {
		t.Errorf("first Resolve = %+v", r)
	}

	r, err = a.Resolve(ctx, dep(license.Npm, "broken", "1.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Info.License != license.Unknown || !r.Cached {
		t.Errorf("second Resolve = %+v, want cached Unknown", r)
	}
	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetcher called %d times, want 1", got)
	}
}

func TestResolveTimeout(t *testing.T) {
	c, _ := newCache(t)
	f := &fakeFetcher{eco: license.Go, slow: map[string]bool{"example.com/slow": true}}
	a := New(Options{Cache: c, Fetchers: []integrations.Fetcher{f}, Timeout: 20 * time.Millisecond})

	r, err := a.Resolve(context.Background(), dep(license.Go, "example.com/slow", "v1.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Info.License != license.Timeout {
		t.Errorf("License = %q, want %q", r.Info.License, license.Timeout)
	}

	e, ok := c.Lookup(string(license.Go), "example.com/slow", "v1.0.0")
	if !ok || e.License != license.Timeout {
		t.Errorf("cached entry = %+v, %v; want Timeout", e, ok)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	f := &fakeFetcher{eco: license.Npm, slow: map[string]bool{"a": true, "b": true}}
	a := New(Options{Fetchers: []integrations.Fetcher{f}, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := a.Analyze(ctx, []manifest.Dependency{dep(license.Npm, "a", ""), dep(license.Npm, "b", "")})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAnalyzeConcurrencyLimit(t *testing.T) {
	licenses := make(map[string]string)
	var deps []manifest.Dependency
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		licenses[name] = "MIT"
		deps = append(deps, dep(license.Npm, name, "1.0.0"))
	}
	f := &fakeFetcher{eco: license.Npm, licenses: licenses, delay: 10 * time.Millisecond}

	var (
		mu    sync.Mutex
		calls []int
	)
	a := New(Options{
		Fetchers:    []integrations.Fetcher{f},
		Concurrency: 2,
		Progress: func(done, total int, _ Result) {
			mu.Lock()
			defer mu.Unlock()
			if total != len(deps) {
				t.Errorf("progress total = %d", total)
			}
			calls = append(calls, done)
		},
	})

	if _, err := a.Analyze(context.Background(), deps); err != nil {
		t.Fatal(err)
	}
	if got := f.maxSeen.Load(); got > 2 {
		t.Errorf("max in-flight fetches = %d, want <= 2", got)
	}
	if want := []int{1, 2, 3, 4, 5, 6, 7, 8}; !slices.Equal(calls, want) {
		t.Errorf("progress calls = %v, want %v", calls, want)
	}
}

func TestResolveCacheDisabled(t *testing.T) {
	c, settings := newCache(t)
	settings.SetEnabled(false)
	f := &fakeFetcher{eco: license.Npm, licenses: map[string]string{"x": "MIT"}}
	a := New(Options{Cache: c, Fetchers: []integrations.Fetcher{f}})

	for i := 0; i < 3; i++ {
		r, err := a.Resolve(context.Background(), dep(license.Npm, "x", "1.0.0"))
		if err != nil {
			t.Fatal(err)
		}
		if r.Cached {
			t.Error("result served from a disabled cache")
		}
	}
	if got := f.calls.Load(); got != 3 {
		t.Errorf("fetcher called %d times, want 3", got)
	}
}

func TestResolveInvalidDependency(t *testing.T) {
	f := &fakeFetcher{eco: license.Npm, licenses: map[string]string{"../etc": "MIT"}}
	a := New(Options{Fetchers: []integrations.Fetcher{f}})

	for _, d := range []manifest.Dependency{
		dep(license.Npm, "../etc", "1.0.0"),
		dep(license.Npm, "ok", "1.0.0 beta"),
	} {
		r, err := a.Resolve(context.Background(), d)
		if err != nil {
			t.Fatal(err)
		}
		if r.Info.License != license.Unknown || r.Error == "" {
			t.Errorf("Resolve(%v) = %+v, want Unknown with error", d, r)
		}
	}
	if got := f.calls.Load(); got != 0 {
		t.Errorf("fetcher called %d times for invalid input", got)
	}
}

type fakeText struct {
	calls atomic.Int32
	texts map[string]string
}

func (f *fakeText) FetchText(_ context.Context, name string) (string, string, error) {
	f.calls.Add(1)
	if t, ok := f.texts[name]; ok {
		return t, "test", nil
	}
	return "", "", errors.New(errors.ErrCodeLicenseNotFound, "no text for %s", name)
}

func TestLicenseText(t *testing.T) {
	c, _ := newCache(t)
	src := &fakeText{texts: map[string]string{"MIT": "Permission is hereby granted..."}}
	a := New(Options{Cache: c, Text: src})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		text, source, err := a.LicenseText(ctx, "mit")
		if err != nil {
			t.Fatalf("LicenseText failed: %v", err)
		}
		if text != "Permission is hereby granted..." || source != "test" {
			t.Errorf("LicenseText = %q, %q", text, source)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("text source called %d times, want 1", got)
	}

	if _, _, err := a.LicenseText(ctx, "Nope-1.0"); !errors.Is(err, errors.ErrCodeLicenseNotFound) {
		t.Errorf("unknown license: got %v", err)
	}
	if _, _, err := a.LicenseText(ctx, " "); !errors.Is(err, errors.ErrCodeInvalidLicense) {
		t.Errorf("blank license: got %v", err)
	}
}

func TestLicenseTextWithoutSource(t *testing.T) {
	c, _ := newCache(t)
	c.StoreText("MIT", "cached text", "seed")
	a := New(Options{Cache: c})

	text, source, err := a.LicenseText(context.Background(), "MIT")
	if err != nil || text != "cached text" || source != "seed" {
		t.Errorf("LicenseText = %q, %q, %v", text, source, err)
	}
	if _, _, err := a.LicenseText(context.Background(), "ISC"); !errors.Is(err, errors.ErrCodeLicenseNotFound) {
		t.Errorf("expected LICENSE_NOT_FOUND, got %v", err)
	}
}

func TestComponents(t *testing.T) {
	a := New(Options{})

	tests := []struct {
		in   string
		want []string
	}{
		{"MIT", []string{"MIT"}},
		{"mit", []string{"MIT"}},
		{"MIT OR Apache-2.0", []string{"MIT", "Apache-2.0"}},
		{"(MIT/Apache-2.0)", []string{"MIT", "Apache-2.0"}},
		{license.Unknown, []string{license.Unknown}},
		{"Custom EULA", []string{"Custom EULA"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := a.Components(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("Components(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	a := New(Options{})
	report := a.Evaluate([]Result{
		{Info: license.Info{License: "MIT"}, Cached: true},
		{Info: license.Info{License: "ISC"}},
	})
	if !report.Compatibility.OverallCompatible {
		t.Errorf("MIT and ISC should be compatible: %+v", report.Compatibility.Issues)
	}
	if report.Risk != compat.RiskLow {
		t.Errorf("Risk = %q, want low", report.Risk)
	}
	if want := []string{compat.RecommendCompatible}; !slices.Equal(report.Recommendations, want) {
		t.Errorf("Recommendations = %v", report.Recommendations)
	}
	if report.Summary != (Summary{Total: 2, Cached: 1, Fetched: 1}) {
		t.Errorf("Summary = %+v", report.Summary)
	}
}
