package cache

import (
	"time"

	"github.com/matzehuels/licensetower/pkg/license"
)

// InfoEntry is a cached license record for one package identity.
type InfoEntry struct {
	license.Info
	Ecosystem string    `json:"ecosystem"`
	FetchedAt time.Time `json:"fetchedAt"`
}

func (e InfoEntry) fetched() time.Time { return e.FetchedAt }

// TextEntry is the cached full text of one license.
type TextEntry struct {
	LicenseName string    `json:"licenseName"`
	Text        string    `json:"text"`
	Source      string    `json:"source,omitempty"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

func (e TextEntry) fetched() time.Time { return e.FetchedAt }

// Stats summarizes the cache contents.
type Stats struct {
	InfoCount   int        `json:"infoCount"`
	TextCount   int        `json:"textCount"`
	ApproxBytes int        `json:"approxBytes"` // Serialized snapshot length, not memory use
	Oldest      *time.Time `json:"oldest,omitempty"`
	Newest      *time.Time `json:"newest,omitempty"`
}

// InfoRecord is an exported info entry.
type InfoRecord struct {
	Key string `json:"key"`
	InfoEntry
	Age     time.Duration `json:"-"`
	AgeMs   int64         `json:"ageMs"`
	Expired bool          `json:"expired"`
}

// TextRecord is an exported text entry.
type TextRecord struct {
	TextEntry
	Age     time.Duration `json:"-"`
	AgeMs   int64         `json:"ageMs"`
	Expired bool          `json:"expired"`
}

// Snapshot is a read-only dump of both keyspaces in insertion order.
type Snapshot struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	MaxAgeMs    int64        `json:"maxAgeMs"`
	Info        []InfoRecord `json:"info"`
	Text        []TextRecord `json:"text"`
}
