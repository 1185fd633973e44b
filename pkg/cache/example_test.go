package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/licensetower/pkg/cache"
	"github.com/matzehuels/licensetower/pkg/config"
	"github.com/matzehuels/licensetower/pkg/license"
	"github.com/matzehuels/licensetower/pkg/storage"
)

func ExampleCache() {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	c := cache.New(config.NewStatic(), cache.Options{Clock: clock})
	c.Init(ctx, storage.NewMemory())
	defer c.Close()

	c.Store("npm", "lodash", "4.17.21", license.Info{Name: "lodash", Version: "4.17.21", License: "MIT"})

	if e, ok := c.Lookup("npm", "lodash", "4.17.21"); ok {
		fmt.Println(e.License, e.FetchedAt.Format(cache.TimeLayout))
	}
	_, ok := c.Lookup("npm", "lodash", "4.17.20")
	fmt.Println("other version cached:", ok)
	// Output:
	// MIT 2024-05-01T12:00:00.000Z
	// other version cached: false
}

func ExampleCache_Stats() {
	c := cache.New(config.NewStatic(), cache.Options{})
	c.Store("crates", "serde", "1.0.0", license.Info{Name: "serde", License: "MIT OR Apache-2.0"})
	c.StoreText("MIT", "Permission is hereby granted...", "github")

	s := c.Stats()
	fmt.Println(s.InfoCount, s.TextCount, s.ApproxBytes > 0)
	// Output: 1 1 true
}
