package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/licensetower/pkg/config"
	"github.com/matzehuels/licensetower/pkg/license"
	"github.com/matzehuels/licensetower/pkg/storage"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

type fixture struct {
	cache    *Cache
	clock    clockwork.FakeClock
	store    *storage.Memory
	settings *config.Static
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:    clockwork.NewFakeClockAt(epoch),
		store:    storage.NewMemory(),
		settings: config.NewStatic(),
	}
	f.cache = New(f.settings, Options{Clock: f.clock, Debounce: time.Second})
	f.cache.Init(context.Background(), f.store)
	return f
}

// waitWrites blocks until n blob writes have reached the store.
func (f *fixture) waitWrites(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.store.Written():
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for write %d of %d", i+1, n)
		}
	}
}

// assertNoWrite fails if a write arrives within a short grace period.
func (f *fixture) assertNoWrite(t *testing.T) {
	t.Helper()
	select {
	case key := <-f.store.Written():
		t.Fatalf("unexpected write of %s", key)
	case <-time.After(50 * time.Millisecond):
	}
}

func mit(name string) license.Info {
	return license.Info{Name: name, Version: "1.0.0", License: "MIT", Repository: "https://github.com/x/" + name}
}

func TestLookupAfterStore(t *testing.T) {
	f := newFixture(t)

	infos := []license.Info{
		mit("lodash"),
		{Name: "serde", Version: "1.0.0", License: "MIT OR Apache-2.0", Description: "serialization"},
		{Name: "left-pad", License: license.Unknown},
	}
	for _, info := range infos {
		f.cache.Store("npm", info.Name, info.Version, info)
	}

	for _, want := range infos {
		got, ok := f.cache.Lookup("npm", want.Name, want.Version)
		if !ok {
			t.Fatalf("Lookup(%s) missed", want.Name)
		}
		if got.Info != want {
			t.Errorf("Lookup(%s) = %+v, want %+v", want.Name, got.Info, want)
		}
		if got.Ecosystem != "npm" {
			t.Errorf("Ecosystem = %q, want npm", got.Ecosystem)
		}
		if !got.FetchedAt.Equal(epoch.Truncate(time.Millisecond)) {
			t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, epoch)
		}
	}
}

func TestKeysAreCaseSensitive(t *testing.T) {
	f := newFixture(t)
	f.cache.Store("npm", "React", "18.0.0", mit("React"))

	if _, ok := f.cache.Lookup("npm", "react", "18.0.0"); ok {
		t.Error("lookup should be case-sensitive")
	}
	if _, ok := f.cache.Lookup("crates", "React", "18.0.0"); ok {
		t.Error("ecosystems should not share entries")
	}
	if _, ok := f.cache.Lookup("npm", "React", ""); ok {
		t.Error("versions should not share entries")
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	f := newFixture(t)
	f.cache.Store("npm", "a", "1", mit("a"))

	e, _ := f.cache.Lookup("npm", "a", "1")
	e.License = "GPL-3.0"

	again, _ := f.cache.Lookup("npm", "a", "1")
	if again.License != "MIT" {
		t.Errorf("mutating a lookup result changed the cache: %s", again.License)
	}
}

func TestExpiry(t *testing.T) {
	f := newFixture(t)
	f.settings.SetMaxAge(time.Hour)

	f.cache.Store("npm", "a", "1", mit("a"))
	f.cache.Store("npm", "b", "1", mit("b"))
	f.cache.StoreText("MIT", "Permission is hereby granted", "github")

	f.clock.Advance(time.Hour)
	if _, ok := f.cache.Lookup("npm", "a", "1"); !ok {
		t.Fatal("entry exactly maxAge old should still be valid")
	}

	f.clock.Advance(time.Millisecond)
	before := f.cache.Stats().InfoCount
	if _, ok := f.cache.Lookup("npm", "a", "1"); ok {
		t.Fatal("expired entry returned")
	}
	after := f.cache.Stats().InfoCount
	if after != before-1 {
		t.Errorf("InfoCount %d -> %d, want decrease by one", before, after)
	}

	if _, ok := f.cache.LookupText("MIT"); ok {
		t.Error("expired text returned")
	}
	if got := f.cache.Stats().TextCount; got != 0 {
		t.Errorf("TextCount = %d, want 0", got)
	}
}

func TestMaxAgeReadPerCall(t *testing.T) {
	f := newFixture(t)
	f.cache.Store("npm", "a", "1", mit("a"))
	f.clock.Advance(10 * time.Minute)

	f.settings.SetMaxAge(5 * time.Minute)
	if _, ok := f.cache.Lookup("npm", "a", "1"); ok {
		t.Error("shortened maxAge not applied")
	}
}

func TestExpiryBoundaryWithSubMillisecondClock(t *testing.T) {
	f := newFixture(t)
	f.clock = clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 900_000, time.UTC))
	f.cache = New(f.settings, Options{Clock: f.clock, Debounce: time.Second})
	f.cache.Init(context.Background(), f.store)
	f.settings.SetMaxAge(time.Hour)

	f.cache.Store("npm", "a", "1", mit("a"))
	f.cache.StoreText("MIT", "Permission is hereby granted", "github")
	f.clock.Advance(time.Hour)

	snap := f.cache.Export()
	if len(snap.Info) != 1 || snap.Info[0].Age != time.Hour || snap.Info[0].Expired {
		t.Errorf("Export at maxAge = %+v, want age 1h and not expired", snap.Info)
	}
	if n := f.cache.ClearExpired(); n != 0 {
		t.Errorf("ClearExpired at maxAge removed %d entries", n)
	}
	if _, ok := f.cache.Lookup("npm", "a", "1"); !ok {
		t.Error("info entry aged exactly maxAge treated as expired")
	}
	if _, ok := f.cache.LookupText("MIT"); !ok {
		t.Error("text entry aged exactly maxAge treated as expired")
	}
}

func TestNonPositiveMaxSizeStoresNothing(t *testing.T) {
	for _, maxSize := range []int{0, -5} {
		f := newFixture(t)
		f.settings.SetMaxSize(maxSize)

		f.cache.Store("npm", "a", "1", mit("a"))
		f.cache.StoreText("MIT", "text", "")

		s := f.cache.Stats()
		if s.InfoCount != 0 || s.TextCount != 0 {
			t.Errorf("maxSize %d: counts = %d/%d, want 0/0", maxSize, s.InfoCount, s.TextCount)
		}
		if f.cache.pending() {
			t.Errorf("maxSize %d: write scheduled for a rejected store", maxSize)
		}
	}
}

func TestEviction(t *testing.T) {
	const maxSize = 20
	f := newFixture(t)
	f.settings.SetMaxSize(maxSize)

	for i := 0; i <= maxSize; i++ {
		f.cache.Store("npm", fmt.Sprintf("pkg%02d", i), "1", mit("p"))
		if n := f.cache.Stats().InfoCount; n > maxSize {
			t.Fatalf("after %d stores InfoCount = %d > %d", i+1, n, maxSize)
		}
		f.clock.Advance(time.Millisecond)
	}

	evicted := maxSize / 10
	if got := f.cache.Stats().InfoCount; got != maxSize+1-evicted {
		t.Errorf("InfoCount = %d, want %d", got, maxSize+1-evicted)
	}
	for i := 0; i <= maxSize; i++ {
		_, ok := f.cache.Lookup("npm", fmt.Sprintf("pkg%02d", i), "1")
		if want := i >= evicted; ok != want {
			t.Errorf("pkg%02d present = %v, want %v", i, ok, want)
		}
	}
}

func TestEvictionOrderUsesFetchTime(t *testing.T) {
	f := newFixture(t)
	f.settings.SetMaxSize(10)

	// Insert "first" last in fetch time by replacing it after the others.
	f.cache.Store("npm", "first", "1", mit("first"))
	for i := 0; i < 9; i++ {
		f.clock.Advance(time.Millisecond)
		f.cache.Store("npm", fmt.Sprintf("p%d", i), "1", mit("p"))
	}
	f.clock.Advance(time.Millisecond)
	f.cache.Store("npm", "first", "1", mit("first"))
	if got := f.cache.Stats().InfoCount; got != 10 {
		t.Fatalf("replacing an entry should not evict, InfoCount = %d", got)
	}

	f.cache.Store("npm", "new", "1", mit("new"))
	if _, ok := f.cache.Lookup("npm", "p0", "1"); ok {
		t.Error("p0 is the oldest entry and should be evicted")
	}
	if _, ok := f.cache.Lookup("npm", "first", "1"); !ok {
		t.Error("refreshed entry should survive eviction")
	}
}

func TestEvictionTiesKeepInsertionOrder(t *testing.T) {
	f := newFixture(t)
	f.settings.SetMaxSize(10)

	for i := 0; i < 11; i++ {
		f.cache.Store("npm", fmt.Sprintf("p%d", i), "1", mit("p"))
	}
	if _, ok := f.cache.Lookup("npm", "p0", "1"); ok {
		t.Error("first inserted entry should be evicted on a timestamp tie")
	}
	if _, ok := f.cache.Lookup("npm", "p1", "1"); !ok {
		t.Error("second inserted entry should survive")
	}
}

func TestTextKeyspaceBoundedSeparately(t *testing.T) {
	f := newFixture(t)
	f.settings.SetMaxSize(10)

	for i := 0; i < 10; i++ {
		f.cache.Store("npm", fmt.Sprintf("p%d", i), "1", mit("p"))
	}
	for i := 0; i < 15; i++ {
		f.cache.StoreText(fmt.Sprintf("L%d", i), "text", "")
	}

	s := f.cache.Stats()
	if s.InfoCount != 10 {
		t.Errorf("InfoCount = %d, want 10", s.InfoCount)
	}
	if s.TextCount > 10 {
		t.Errorf("TextCount = %d, want <= 10", s.TextCount)
	}
}

func TestDebouncedWrite(t *testing.T) {
	f := newFixture(t)

	f.cache.Store("npm", "a", "1", license.Info{Name: "a", License: "MIT"})
	f.clock.Advance(500 * time.Millisecond)
	f.cache.Store("npm", "a", "1", license.Info{Name: "a", License: "ISC"})
	f.clock.Advance(500 * time.Millisecond)
	f.cache.Store("npm", "a", "1", license.Info{Name: "a", License: "Apache-2.0"})

	if f.store.Writes() != 0 {
		t.Fatalf("no write expected before the quiet period, got %d", f.store.Writes())
	}
	if !f.cache.pending() {
		t.Fatal("a write should be pending")
	}

	f.clock.Advance(time.Second)
	f.waitWrites(t, 2)

	f.clock.Advance(time.Minute)
	f.assertNoWrite(t)

	if got := f.store.Writes(); got != 2 {
		t.Errorf("blob writes = %d, want 2 (one snapshot)", got)
	}

	data, _, _ := f.store.Get(context.Background(), InfoBlob)
	var blob map[string]map[string]any
	if err := json.Unmarshal(data, &blob); err != nil {
		t.Fatal(err)
	}
	if got := blob[Key("npm", "a", "1")]["license"]; got != "Apache-2.0" {
		t.Errorf("persisted license = %v, want Apache-2.0", got)
	}
}

func TestClearAllWritesImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.cache.Store("npm", "a", "1", mit("a"))
	f.cache.StoreText("MIT", "text", "")

	if err := f.cache.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll error: %v", err)
	}
	if got := f.store.Writes(); got != 2 {
		t.Fatalf("ClearAll should write both blobs at once, writes = %d", got)
	}
	f.waitWrites(t, 2)

	for _, blob := range []string{InfoBlob, TextBlob} {
		data, _, _ := f.store.Get(ctx, blob)
		if string(data) != "{}" {
			t.Errorf("%s = %s, want {}", blob, data)
		}
	}

	// The timer scheduled by the stores above must not resurrect the data.
	f.clock.Advance(time.Minute)
	f.assertNoWrite(t)

	s := f.cache.Stats()
	if s.InfoCount != 0 || s.TextCount != 0 {
		t.Errorf("Stats after ClearAll = %+v", s)
	}
}

func TestClearExpired(t *testing.T) {
	f := newFixture(t)
	f.settings.SetMaxAge(time.Hour)

	f.cache.Store("npm", "old", "1", mit("old"))
	f.cache.StoreText("OLD", "text", "")
	f.clock.Advance(2 * time.Hour)
	f.waitWrites(t, 2)
	f.cache.Store("npm", "new", "1", mit("new"))

	if n := f.cache.ClearExpired(); n != 2 {
		t.Errorf("ClearExpired() = %d, want 2", n)
	}
	if got := f.cache.Stats().InfoCount; got != 1 {
		t.Errorf("InfoCount = %d, want 1", got)
	}
	if n := f.cache.ClearExpired(); n != 0 {
		t.Errorf("second ClearExpired() = %d, want 0", n)
	}
}

func TestDisabledAtRuntime(t *testing.T) {
	f := newFixture(t)

	f.cache.Store("npm", "a", "1", mit("a"))
	f.settings.SetEnabled(false)

	if _, ok := f.cache.Lookup("npm", "a", "1"); ok {
		t.Error("lookup while disabled should miss")
	}

	f.cache.Store("npm", "b", "1", mit("b"))
	f.cache.StoreText("MIT", "text", "")
	if _, ok := f.cache.LookupText("MIT"); ok {
		t.Error("text lookup while disabled should miss")
	}

	f.settings.SetEnabled(true)
	if _, ok := f.cache.Lookup("npm", "b", "1"); ok {
		t.Error("store while disabled should be a no-op")
	}
	if _, ok := f.cache.LookupText("MIT"); ok {
		t.Error("text store while disabled should be a no-op")
	}
	if _, ok := f.cache.Lookup("npm", "a", "1"); !ok {
		t.Error("entries stored while enabled should survive a disable toggle")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.cache.Store("npm", "lodash", "4.17.21", license.Info{
		Name: "lodash", Version: "4.17.21", License: "MIT",
		Repository: "https://github.com/lodash/lodash", HomePage: "https://lodash.com",
		Description: "Lodash modular utilities.",
	})
	f.clock.Advance(1234 * time.Millisecond)
	f.cache.Store("go", "golang.org/x/mod", "v0.31.0", license.Info{Name: "golang.org/x/mod", License: "BSD-3-Clause"})
	f.cache.StoreText("MIT", "Permission is hereby granted", "github")

	if err := f.cache.Flush(ctx); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	data, _, _ := f.store.Get(ctx, InfoBlob)
	if want := `"fetchedAt":"2024-05-01T12:00:00.123Z"`; !strings.Contains(string(data), want) {
		t.Errorf("snapshot %s does not contain %s", data, want)
	}

	restored := New(f.settings, Options{Clock: f.clock})
	restored.Init(ctx, f.store)

	before, after := f.cache.Export(), restored.Export()
	if len(after.Info) != len(before.Info) || len(after.Text) != len(before.Text) {
		t.Fatalf("restored %d/%d entries, want %d/%d",
			len(after.Info), len(after.Text), len(before.Info), len(before.Text))
	}
	for i := range before.Info {
		b, a := before.Info[i], after.Info[i]
		if a.Key != b.Key || a.Info != b.Info || a.Ecosystem != b.Ecosystem || !a.FetchedAt.Equal(b.FetchedAt) {
			t.Errorf("info[%d] = %+v, want %+v", i, a, b)
		}
	}
	for i := range before.Text {
		b, a := before.Text[i], after.Text[i]
		if a.LicenseName != b.LicenseName || a.Text != b.Text || a.Source != b.Source || !a.FetchedAt.Equal(b.FetchedAt) {
			t.Errorf("text[%d] = %+v, want %+v", i, a.TextEntry, b.TextEntry)
		}
	}

	// Writing the restored state reproduces the same bytes.
	if err := restored.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	again, _, _ := f.store.Get(ctx, InfoBlob)
	if string(again) != string(data) {
		t.Errorf("re-encoded snapshot differs:\n%s\n%s", again, data)
	}
}

func TestInitDecodeFailure(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Update(ctx, InfoBlob, []byte("{not json"))
	_ = store.Update(ctx, TextBlob, []byte(`{"MIT":{"licenseName":"MIT","text":"x","fetchedAt":"2024-05-01T12:00:00.000Z"}}`))

	clock := clockwork.NewFakeClockAt(epoch)
	c := New(config.NewStatic(), Options{Clock: clock})
	c.Init(ctx, store)

	s := c.Stats()
	if s.InfoCount != 0 {
		t.Errorf("InfoCount = %d, want 0 after decode failure", s.InfoCount)
	}
	if s.TextCount != 1 {
		t.Errorf("TextCount = %d, want 1; a bad info blob should not affect text", s.TextCount)
	}

	c.Store("npm", "a", "1", mit("a"))
	if _, ok := c.Lookup("npm", "a", "1"); !ok {
		t.Error("cache should keep working after a decode failure")
	}
	if err := c.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	data, _, _ := store.Get(ctx, InfoBlob)
	if !json.Valid(data) {
		t.Errorf("flush should overwrite the bad snapshot, got %s", data)
	}
}

func TestInitFillsEcosystemFromKey(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Update(ctx, InfoBlob, []byte(`{"crates|serde|1.0.0":{"name":"serde","license":"MIT","fetchedAt":"2024-05-01T12:00:00.000Z"}}`))

	settings := config.NewStatic()
	settings.SetMaxAge(100 * 365 * 24 * time.Hour)
	c := New(settings, Options{})
	c.Init(ctx, store)

	e, ok := c.Lookup("crates", "serde", "1.0.0")
	if !ok {
		t.Fatal("entry without ecosystem field not loaded")
	}
	if e.Ecosystem != "crates" {
		t.Errorf("Ecosystem = %q, want crates", e.Ecosystem)
	}
}

func TestInitBadTimestamp(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Update(ctx, InfoBlob, []byte(`{"npm|a|1":{"name":"a","license":"MIT","fetchedAt":"yesterday"}}`))

	c := New(config.NewStatic(), Options{})
	c.Init(ctx, store)
	if got := c.Stats().InfoCount; got != 0 {
		t.Errorf("InfoCount = %d, want 0", got)
	}
}

func TestWriteFailureIsRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	boom := stderrors.New("disk full")
	f.store.FailWrites(boom)
	f.cache.Store("npm", "a", "1", mit("a"))

	if err := f.cache.Flush(ctx); !stderrors.Is(err, boom) {
		t.Fatalf("Flush error = %v, want %v", err, boom)
	}
	if _, ok := f.cache.Lookup("npm", "a", "1"); !ok {
		t.Fatal("memory should stay authoritative after a failed write")
	}

	f.store.FailWrites(nil)
	if err := f.cache.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if got := f.store.Writes(); got != 2 {
		t.Errorf("Close should retry the failed snapshot, writes = %d", got)
	}
}

func TestClosePersistsPendingChanges(t *testing.T) {
	f := newFixture(t)
	f.cache.Store("npm", "a", "1", mit("a"))

	if err := f.cache.Close(); err != nil {
		t.Fatal(err)
	}
	if got := f.store.Writes(); got != 2 {
		t.Errorf("writes = %d, want 2", got)
	}

	f.clock.Advance(time.Minute)
	f.waitWrites(t, 2)
	f.assertNoWrite(t)
}

func TestCloseWithoutChanges(t *testing.T) {
	f := newFixture(t)
	if err := f.cache.Close(); err != nil {
		t.Fatal(err)
	}
	if got := f.store.Writes(); got != 0 {
		t.Errorf("writes = %d, want 0", got)
	}
}

func TestStatsSizeMonotonic(t *testing.T) {
	f := newFixture(t)

	s := f.cache.Stats()
	if s.Oldest != nil || s.Newest != nil {
		t.Error("empty cache should have no time range")
	}

	prev := s.ApproxBytes
	for i := 0; i < 25; i++ {
		f.clock.Advance(time.Second)
		f.cache.Store("npm", fmt.Sprintf("p%d", i), "1", mit("p"))
		if i%5 == 0 {
			f.cache.StoreText(fmt.Sprintf("L%d", i), strings.Repeat("x", i), "")
		}
		s = f.cache.Stats()
		if s.ApproxBytes < prev {
			t.Fatalf("ApproxBytes decreased from %d to %d", prev, s.ApproxBytes)
		}
		prev = s.ApproxBytes
	}

	if s.Oldest == nil || s.Newest == nil || !s.Oldest.Before(*s.Newest) {
		t.Errorf("Oldest/Newest = %v/%v", s.Oldest, s.Newest)
	}
}

func TestExportDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	f.settings.SetMaxAge(time.Minute)

	f.cache.Store("npm", "a", "1", mit("a"))
	f.clock.Advance(2 * time.Minute)
	f.cache.Store("npm", "b", "1", mit("b"))

	snap := f.cache.Export()
	if len(snap.Info) != 2 {
		t.Fatalf("Export returned %d info records, want 2", len(snap.Info))
	}
	if snap.Info[0].Key != Key("npm", "a", "1") || !snap.Info[0].Expired {
		t.Errorf("first record = %+v, want expired npm|a|1", snap.Info[0])
	}
	if snap.Info[0].Age != 2*time.Minute || snap.Info[0].AgeMs != 120000 {
		t.Errorf("Age = %v / %dms", snap.Info[0].Age, snap.Info[0].AgeMs)
	}
	if snap.Info[1].Expired {
		t.Error("fresh record marked expired")
	}
	if got := f.cache.Stats().InfoCount; got != 2 {
		t.Errorf("Export removed entries, InfoCount = %d", got)
	}
}

func TestReinitSwitchesStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.cache.Store("npm", "a", "1", mit("a"))

	other := storage.NewMemory()
	f.cache.Init(ctx, other)
	if got := f.cache.Stats().InfoCount; got != 0 {
		t.Errorf("Init should load the new store's state, InfoCount = %d", got)
	}

	f.cache.Store("npm", "b", "1", mit("b"))
	if err := f.cache.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if other.Writes() != 2 {
		t.Errorf("writes to new store = %d, want 2", other.Writes())
	}
}

func TestConcurrentStores(t *testing.T) {
	f := newFixture(t)
	f.settings.SetMaxSize(50)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 40; i++ {
				name := fmt.Sprintf("w%d-%d", w, i)
				f.cache.Store("npm", name, "1", mit(name))
				f.cache.Lookup("npm", name, "1")
			}
		}(w)
	}
	wg.Wait()

	if got := f.cache.Stats().InfoCount; got > 50 {
		t.Errorf("InfoCount = %d, want <= 50", got)
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key                      string
		ecosystem, name, version string
		ok                       bool
	}{
		{"npm|lodash|4.17.21", "npm", "lodash", "4.17.21", true},
		{"npm|@scope/pkg|", "npm", "@scope/pkg", "", true},
		{"go|weird|name|v1", "go", "weird|name", "v1", true},
		{"npm|lodash", "", "", "", false},
		{"nokey", "", "", "", false},
	}
	for _, tt := range tests {
		e, n, v, ok := SplitKey(tt.key)
		if e != tt.ecosystem || n != tt.name || v != tt.version || ok != tt.ok {
			t.Errorf("SplitKey(%q) = %q, %q, %q, %v", tt.key, e, n, v, ok)
		}
	}
	if k := Key("npm", "lodash", "1"); k != "npm|lodash|1" {
		t.Errorf("Key() = %q", k)
	}
}
