package cache

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/licensetower/pkg/license"
	"github.com/matzehuels/licensetower/pkg/observability"
	"github.com/matzehuels/licensetower/pkg/storage"
)

// DefaultDebounce is the quiet period before a snapshot write.
const DefaultDebounce = time.Second

// Settings supplies the cache configuration. It is consulted on every
// operation; the cache never copies these values.
type Settings interface {
	CacheEnabled() bool
	CacheMaxAge() time.Duration
	CacheMaxSize() int
}

// Options configures a [Cache].
type Options struct {
	Clock    clockwork.Clock // Defaults to the real clock
	Debounce time.Duration   // Defaults to DefaultDebounce
	Logger   *log.Logger     // Defaults to a discarding logger
}

// Cache is the two-keyspace license metadata cache. It is safe for
// concurrent use.
type Cache struct {
	settings Settings
	clock    clockwork.Clock
	logger   *log.Logger
	flusher  *debouncer

	mu    sync.Mutex
	store storage.Store
	info  *keyspace[InfoEntry]
	text  *keyspace[TextEntry]
	dirty bool // memory differs from the last written snapshot

	// persistMu serializes snapshot writes. It is acquired before mu so
	// that a write always carries the state as of its own encoding.
	persistMu sync.Mutex
}

// New creates an empty cache. Call [Cache.Init] to attach persistence.
func New(settings Settings, opts Options) *Cache {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	c := &Cache{
		settings: settings,
		clock:    opts.Clock,
		logger:   opts.Logger,
		info:     newKeyspace[InfoEntry](),
		text:     newKeyspace[TextEntry](),
	}
	c.flusher = newDebouncer(opts.Clock, opts.Debounce, func() {
		_ = c.persist(context.Background())
	})
	return c
}

// Init attaches store as the persistence target and loads both keyspaces
// from it, replacing the in-memory state. A blob that cannot be read or
// decoded leaves its keyspace empty. Calling Init again switches to a new
// store.
func (c *Cache) Init(ctx context.Context, store storage.Store) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	info := newKeyspace[InfoEntry]()
	if data, ok := c.read(ctx, store, InfoBlob); ok {
		if ks, err := decodeInfo(data); err != nil {
			c.logger.Warn("discarding unreadable cache snapshot", "blob", InfoBlob, "err", err)
		} else {
			info = ks
		}
	}

	text := newKeyspace[TextEntry]()
	if data, ok := c.read(ctx, store, TextBlob); ok {
		if ks, err := decodeText(data); err != nil {
			c.logger.Warn("discarding unreadable cache snapshot", "blob", TextBlob, "err", err)
		} else {
			text = ks
		}
	}

	c.mu.Lock()
	c.store = store
	c.info = info
	c.text = text
	c.dirty = false
	c.mu.Unlock()

	c.logger.Debug("cache loaded", "info", info.len(), "text", text.len())
}

func (c *Cache) read(ctx context.Context, store storage.Store, blob string) ([]byte, bool) {
	if store == nil {
		return nil, false
	}
	data, ok, err := store.Get(ctx, blob)
	if err != nil {
		c.logger.Warn("cache snapshot read failed", "blob", blob, "err", err)
		return nil, false
	}
	return data, ok
}

func (c *Cache) now() time.Time { return stamp(c.clock.Now()) }

func (c *Cache) expired(fetchedAt, now time.Time) bool {
	return now.Sub(fetchedAt) > c.settings.CacheMaxAge()
}

// evictCount is the number of entries removed when a keyspace is full.
func evictCount(maxSize int) int {
	n := maxSize / 10
	if n < 1 {
		n = 1
	}
	return n
}

// Lookup returns the entry for a package identity. It reports false when
// the cache is disabled, the entry is missing, or the entry has expired, in
// which case it is removed.
func (c *Cache) Lookup(ecosystem, name, version string) (*InfoEntry, bool) {
	if !c.settings.CacheEnabled() {
		return nil, false
	}
	key := Key(ecosystem, name, version)
	hooks := observability.Cache()

	c.mu.Lock()
	e, ok := c.info.get(key)
	if ok && c.expired(e.FetchedAt, c.now()) {
		c.info.delete(key)
		c.dirty = true
		ok = false
		hooks.OnCacheEvict(observability.KeyspaceInfo, 1)
	}
	c.mu.Unlock()

	if !ok {
		hooks.OnCacheMiss(observability.KeyspaceInfo)
		return nil, false
	}
	hooks.OnCacheHit(observability.KeyspaceInfo)
	return &e, true
}

// Store records info for a package identity with the current time and
// schedules a snapshot write. It does nothing while the cache is disabled
// or its size bound is not positive. When the keyspace is full, the oldest
// tenth is evicted first.
func (c *Cache) Store(ecosystem, name, version string, info license.Info) {
	if !c.settings.CacheEnabled() {
		return
	}
	maxSize := c.settings.CacheMaxSize()
	if maxSize <= 0 {
		return
	}
	key := Key(ecosystem, name, version)
	hooks := observability.Cache()

	c.mu.Lock()
	evicted := 0
	if !c.info.has(key) && c.info.len() >= maxSize {
		evicted = c.info.evict(evictCount(maxSize))
	}
	c.info.put(key, InfoEntry{Info: info, Ecosystem: ecosystem, FetchedAt: c.now()})
	size := c.info.len()
	c.dirty = true
	c.mu.Unlock()

	if evicted > 0 {
		hooks.OnCacheEvict(observability.KeyspaceInfo, evicted)
		c.logger.Debug("cache evicted", "keyspace", observability.KeyspaceInfo, "count", evicted)
	}
	hooks.OnCacheSet(observability.KeyspaceInfo, size)
	c.flusher.trigger()
}

// LookupText returns the cached text of a license.
func (c *Cache) LookupText(licenseName string) (string, bool) {
	e, ok := c.LookupTextEntry(licenseName)
	if !ok {
		return "", false
	}
	return e.Text, true
}

// LookupTextEntry is [Cache.LookupText] returning the whole entry.
func (c *Cache) LookupTextEntry(licenseName string) (*TextEntry, bool) {
	if !c.settings.CacheEnabled() {
		return nil, false
	}
	hooks := observability.Cache()

	c.mu.Lock()
	e, ok := c.text.get(licenseName)
	if ok && c.expired(e.FetchedAt, c.now()) {
		c.text.delete(licenseName)
		c.dirty = true
		ok = false
		hooks.OnCacheEvict(observability.KeyspaceText, 1)
	}
	c.mu.Unlock()

	if !ok {
		hooks.OnCacheMiss(observability.KeyspaceText)
		return nil, false
	}
	hooks.OnCacheHit(observability.KeyspaceText)
	return &e, true
}

// StoreText records the text of a license. source optionally names where
// the text came from.
func (c *Cache) StoreText(licenseName, text, source string) {
	if !c.settings.CacheEnabled() {
		return
	}
	maxSize := c.settings.CacheMaxSize()
	if maxSize <= 0 {
		return
	}
	hooks := observability.Cache()

	c.mu.Lock()
	evicted := 0
	if !c.text.has(licenseName) && c.text.len() >= maxSize {
		evicted = c.text.evict(evictCount(maxSize))
	}
	c.text.put(licenseName, TextEntry{LicenseName: licenseName, Text: text, Source: source, FetchedAt: c.now()})
	size := c.text.len()
	c.dirty = true
	c.mu.Unlock()

	if evicted > 0 {
		hooks.OnCacheEvict(observability.KeyspaceText, evicted)
	}
	hooks.OnCacheSet(observability.KeyspaceText, size)
	c.flusher.trigger()
}

// ClearAll empties both keyspaces and writes the empty snapshot at once,
// superseding any pending write.
func (c *Cache) ClearAll(ctx context.Context) error {
	c.flusher.cancel()

	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	info := c.info.clear()
	text := c.text.clear()
	c.dirty = true
	c.mu.Unlock()

	hooks := observability.Cache()
	hooks.OnCacheEvict(observability.KeyspaceInfo, info)
	hooks.OnCacheEvict(observability.KeyspaceText, text)
	c.logger.Info("cache cleared", "info", info, "text", text)

	return c.writeLocked(ctx)
}

// ClearExpired removes expired entries from both keyspaces and returns how
// many were removed. It does not write the snapshot; the next flush does.
func (c *Cache) ClearExpired() int {
	maxAge := c.settings.CacheMaxAge()
	now := c.now()

	c.mu.Lock()
	info := c.info.expire(now, maxAge)
	text := c.text.expire(now, maxAge)
	if info+text > 0 {
		c.dirty = true
	}
	c.mu.Unlock()

	hooks := observability.Cache()
	if info > 0 {
		hooks.OnCacheEvict(observability.KeyspaceInfo, info)
	}
	if text > 0 {
		hooks.OnCacheEvict(observability.KeyspaceText, text)
	}
	return info + text
}

// Stats returns entry counts, the snapshot size and the fetch time range.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{InfoCount: c.info.len(), TextCount: c.text.len()}
	if data, err := encodeInfo(c.info); err == nil {
		s.ApproxBytes += len(data)
	}
	if data, err := encodeText(c.text); err == nil {
		s.ApproxBytes += len(data)
	}

	var oldest, newest time.Time
	found := false
	merge := func(o, n time.Time, ok bool) {
		if !ok {
			return
		}
		if !found || o.Before(oldest) {
			oldest = o
		}
		if !found || n.After(newest) {
			newest = n
		}
		found = true
	}
	merge(c.info.bounds())
	merge(c.text.bounds())
	if found {
		s.Oldest, s.Newest = &oldest, &newest
	}
	return s
}

// Export returns every entry with its age, expired ones included. It does
// not modify the cache.
func (c *Cache) Export() Snapshot {
	maxAge := c.settings.CacheMaxAge()
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		GeneratedAt: now,
		MaxAgeMs:    maxAge.Milliseconds(),
		Info:        make([]InfoRecord, 0, c.info.len()),
		Text:        make([]TextRecord, 0, c.text.len()),
	}
	for _, k := range c.info.ordered() {
		age := now.Sub(k.entry.FetchedAt)
		snap.Info = append(snap.Info, InfoRecord{
			Key:       k.key,
			InfoEntry: k.entry,
			Age:       age,
			AgeMs:     age.Milliseconds(),
			Expired:   age > maxAge,
		})
	}
	for _, k := range c.text.ordered() {
		age := now.Sub(k.entry.FetchedAt)
		snap.Text = append(snap.Text, TextRecord{
			TextEntry: k.entry,
			Age:       age,
			AgeMs:     age.Milliseconds(),
			Expired:   age > maxAge,
		})
	}
	return snap
}

// Flush cancels any pending write and writes the snapshot now.
func (c *Cache) Flush(ctx context.Context) error {
	c.flusher.cancel()
	return c.persist(ctx)
}

// pending reports whether a debounced write is scheduled.
func (c *Cache) pending() bool { return c.flusher.pending() }

// Close writes outstanding changes and closes the store.
func (c *Cache) Close() error {
	c.flusher.close()

	c.mu.Lock()
	dirty := c.dirty
	store := c.store
	c.mu.Unlock()

	var err error
	if dirty {
		err = c.persist(context.Background())
	}
	if store != nil {
		err = stderrors.Join(err, store.Close())
	}
	return err
}

func (c *Cache) persist(ctx context.Context) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	return c.writeLocked(ctx)
}

// writeLocked encodes both keyspaces and writes them. persistMu must be held.
func (c *Cache) writeLocked(ctx context.Context) error {
	c.mu.Lock()
	store := c.store
	if store == nil {
		c.mu.Unlock()
		return nil
	}
	info, err := encodeInfo(c.info)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	text, err := encodeText(c.text)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.dirty = false
	c.mu.Unlock()

	start := time.Now()
	err = store.Update(ctx, InfoBlob, info)
	if err == nil {
		err = store.Update(ctx, TextBlob, text)
	}
	observability.Cache().OnCacheFlush(len(info)+len(text), time.Since(start), err)

	if err != nil {
		c.mu.Lock()
		c.dirty = true
		c.mu.Unlock()
		c.logger.Warn("cache snapshot write failed", "err", err)
		return err
	}
	c.logger.Debug("cache snapshot written", "bytes", len(info)+len(text))
	return nil
}
