// Package storage provides the durable key-value handles the metadata cache
// persists its snapshot to.
//
// A [Store] holds a small number of named blobs. The cache writes whole
// blobs (never deltas), so every backend only needs Get and Update
// semantics:
//
//	s, err := storage.Open(ctx, storage.Options{Driver: "sqlite", DSN: "cache.db"})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	_ = s.Update(ctx, "licenseCache", data)
//	data, ok, err := s.Get(ctx, "licenseCache")
//
// # Backends
//
//   - file: one JSON file per blob in a directory (default for the CLI)
//   - sqlite: a key/value table in a SQLite database (modernc.org/sqlite)
//   - postgres: the same table in PostgreSQL (github.com/lib/pq)
//   - redis: one string key per blob (github.com/redis/go-redis/v9)
//   - mongo: one document per blob (go.mongodb.org/mongo-driver)
//   - memory: process-local map, used in tests
//   - null: discards writes, used with --no-cache
//
// Backends are safe for concurrent use.
package storage
