package cache

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/licensetower/pkg/license"
)

// Blob names in the persistence store.
const (
	InfoBlob = "licenseCache"
	TextBlob = "licenseTextCache"
)

// TimeLayout is the persisted timestamp format.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// stamp normalizes t to the precision the snapshot can represent.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func formatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		// Accept any RFC 3339 timestamp written by other tools.
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return stamp(t), nil
}

type wireInfo struct {
	license.Info
	Ecosystem string `json:"ecosystem"`
	FetchedAt string `json:"fetchedAt"`
}

type wireText struct {
	LicenseName string `json:"licenseName"`
	Text        string `json:"text"`
	Source      string `json:"source,omitempty"`
	FetchedAt   string `json:"fetchedAt"`
}

func encodeInfo(ks *keyspace[InfoEntry]) ([]byte, error) {
	m := make(map[string]wireInfo, ks.len())
	for key, s := range ks.slots {
		m[key] = wireInfo{Info: s.entry.Info, Ecosystem: s.entry.Ecosystem, FetchedAt: formatTime(s.entry.FetchedAt)}
	}
	return json.Marshal(m)
}

func encodeText(ks *keyspace[TextEntry]) ([]byte, error) {
	m := make(map[string]wireText, ks.len())
	for key, s := range ks.slots {
		e := s.entry
		m[key] = wireText{LicenseName: e.LicenseName, Text: e.Text, Source: e.Source, FetchedAt: formatTime(e.FetchedAt)}
	}
	return json.Marshal(m)
}

func decodeInfo(data []byte) (*keyspace[InfoEntry], error) {
	var m map[string]wireInfo
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	entries := make(map[string]InfoEntry, len(m))
	for key, w := range m {
		t, err := parseTime(w.FetchedAt)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		eco := w.Ecosystem
		if eco == "" {
			eco, _, _, _ = SplitKey(key)
		}
		entries[key] = InfoEntry{Info: w.Info, Ecosystem: eco, FetchedAt: t}
	}
	return fill(entries), nil
}

func decodeText(data []byte) (*keyspace[TextEntry], error) {
	var m map[string]wireText
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	entries := make(map[string]TextEntry, len(m))
	for key, w := range m {
		t, err := parseTime(w.FetchedAt)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		name := w.LicenseName
		if name == "" {
			name = key
		}
		entries[key] = TextEntry{LicenseName: name, Text: w.Text, Source: w.Source, FetchedAt: t}
	}
	return fill(entries), nil
}

// fill builds a keyspace whose insertion order follows fetch time, so
// eviction after a restart still removes the oldest entries first.
func fill[E timestamped](entries map[string]E) *keyspace[E] {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := entries[a].fetched().Compare(entries[b].fetched()); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	ks := newKeyspace[E]()
	for _, k := range keys {
		ks.put(k, entries[k])
	}
	return ks
}
