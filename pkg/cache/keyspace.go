package cache

import (
	"slices"
	"time"
)

// timestamped is implemented by the entry types held in a keyspace.
type timestamped interface {
	fetched() time.Time
}

type slot[E timestamped] struct {
	entry E
	seq   uint64 // insertion order, kept when an entry is replaced
}

// keyspace is an insertion-ordered map of entries. It is not safe for
// concurrent use; Cache guards it with its mutex.
type keyspace[E timestamped] struct {
	slots map[string]*slot[E]
	next  uint64
}

func newKeyspace[E timestamped]() *keyspace[E] {
	return &keyspace[E]{slots: make(map[string]*slot[E])}
}

func (k *keyspace[E]) len() int { return len(k.slots) }

func (k *keyspace[E]) get(key string) (E, bool) {
	s, ok := k.slots[key]
	if !ok {
		var zero E
		return zero, false
	}
	return s.entry, true
}

func (k *keyspace[E]) has(key string) bool {
	_, ok := k.slots[key]
	return ok
}

func (k *keyspace[E]) put(key string, e E) {
	if s, ok := k.slots[key]; ok {
		s.entry = e
		return
	}
	k.slots[key] = &slot[E]{entry: e, seq: k.next}
	k.next++
}

func (k *keyspace[E]) delete(key string) { delete(k.slots, key) }

func (k *keyspace[E]) clear() int {
	n := len(k.slots)
	k.slots = make(map[string]*slot[E])
	k.next = 0
	return n
}

type keyed[E timestamped] struct {
	key   string
	entry E
	seq   uint64
}

// ordered returns all entries in insertion order.
func (k *keyspace[E]) ordered() []keyed[E] {
	out := make([]keyed[E], 0, len(k.slots))
	for key, s := range k.slots {
		out = append(out, keyed[E]{key: key, entry: s.entry, seq: s.seq})
	}
	slices.SortFunc(out, func(a, b keyed[E]) int { return compareUint(a.seq, b.seq) })
	return out
}

// byAge returns all entries oldest first; ties keep insertion order.
func (k *keyspace[E]) byAge() []keyed[E] {
	out := k.ordered()
	slices.SortStableFunc(out, func(a, b keyed[E]) int {
		return a.entry.fetched().Compare(b.entry.fetched())
	})
	return out
}

// evict removes the n oldest entries and returns how many were removed.
func (k *keyspace[E]) evict(n int) int {
	if n <= 0 {
		return 0
	}
	victims := k.byAge()
	if n > len(victims) {
		n = len(victims)
	}
	for _, v := range victims[:n] {
		delete(k.slots, v.key)
	}
	return n
}

// expire removes entries older than maxAge at now.
func (k *keyspace[E]) expire(now time.Time, maxAge time.Duration) int {
	removed := 0
	for key, s := range k.slots {
		if now.Sub(s.entry.fetched()) > maxAge {
			delete(k.slots, key)
			removed++
		}
	}
	return removed
}

// bounds returns the oldest and newest fetch times, ok false when empty.
func (k *keyspace[E]) bounds() (oldest, newest time.Time, ok bool) {
	for _, s := range k.slots {
		t := s.entry.fetched()
		if !ok || t.Before(oldest) {
			oldest = t
		}
		if !ok || t.After(newest) {
			newest = t
		}
		ok = true
	}
	return oldest, newest, ok
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
