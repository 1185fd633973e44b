// Package cache implements the license metadata cache.
//
// A [Cache] holds two independent keyspaces:
//   - license info, one [InfoEntry] per package identity (ecosystem, name, version)
//   - license text, one [TextEntry] per license name
//
// Both keyspaces expire entries after the configured max age, hold at most
// max size entries each (evicting the oldest tenth when full), and are
// written to a [storage.Store] after a quiet period following the last
// mutation. Settings are read on every operation, so disabling the cache at
// runtime takes effect immediately.
//
// # Persistence
//
// The snapshot consists of two blobs, "licenseCache" and "licenseTextCache",
// each a JSON object mapping a key to its entry. Timestamps are ISO-8601
// strings with millisecond precision in UTC:
//
//	{"npm|lodash|4.17.21": {"name": "lodash", "license": "MIT",
//	  "ecosystem": "npm", "fetchedAt": "2024-05-01T12:00:00.000Z"}}
//
// A blob that fails to decode is logged and its keyspace starts empty. Write
// failures are logged and retried implicitly by the next flush.
//
// # Usage
//
//	c := cache.New(cfg, cache.Options{Logger: logger})
//	c.Init(ctx, store)
//	defer c.Close()
//
//	if e, ok := c.Lookup("npm", "lodash", "4.17.21"); ok {
//	    fmt.Println(e.License)
//	}
package cache
