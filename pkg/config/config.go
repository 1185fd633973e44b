// Package config loads licensetower settings from an optional config file,
// LICENSETOWER_* environment variables and built-in defaults.
//
// Values are read from the underlying viper instance on every access, so a
// [Config.Set] at runtime or a watched config file takes effect on the next
// cache operation without restarting the process.
package config

import (
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/licensetower/pkg/errors"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// LICENSETOWER_CACHE_ENABLED=false.
const EnvPrefix = "LICENSETOWER"

// Keys understood by [Config].
const (
	KeyCacheEnabled     = "cache.enabled"
	KeyCacheMaxAge      = "cache.maxAge"
	KeyCacheMaxSize     = "cache.maxSize"
	KeyCacheDebounce    = "cache.debounce"
	KeyFetchTimeout     = "fetch.timeout"
	KeyFetchConcurrency = "fetch.concurrency"
	KeyFetchRateLimit   = "fetch.rateLimit"
	KeyStorageDriver    = "storage.driver"
	KeyStorageDSN       = "storage.dsn"
	KeyServerAddr       = "server.addr"
	KeyGitHubToken      = "github.token"
)

// Defaults. Durations are expressed in milliseconds in configuration.
const (
	DefaultCacheMaxAge      = 24 * time.Hour
	DefaultCacheMaxSize     = 1000
	DefaultCacheDebounce    = time.Second
	DefaultFetchTimeout     = 10 * time.Second
	DefaultFetchConcurrency = 8
	DefaultFetchRateLimit   = 20
	DefaultStorageDriver    = "file"
	DefaultServerAddr       = ":8080"
)

// Config is the process configuration.
type Config struct {
	mu sync.RWMutex
	v  *viper.Viper
}

// New returns a Config holding only defaults and environment overrides.
func New() *Config {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// Load reads path (YAML, TOML or JSON, chosen by extension) on top of the
// defaults. An empty path looks for licensetower.{yaml,toml,json} in the
// working directory and $XDG_CONFIG_HOME/licensetower, and is not an error
// when none exists.
func Load(path string) (*Config, error) {
	c := New()
	if path != "" {
		c.v.SetConfigFile(path)
		if err := c.v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		return c, nil
	}

	c.v.SetConfigName("licensetower")
	c.v.AddConfigPath(".")
	c.v.AddConfigPath("$XDG_CONFIG_HOME/licensetower")
	c.v.AddConfigPath("$HOME/.config/licensetower")
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyCacheEnabled, true)
	v.SetDefault(KeyCacheMaxAge, DefaultCacheMaxAge.Milliseconds())
	v.SetDefault(KeyCacheMaxSize, DefaultCacheMaxSize)
	v.SetDefault(KeyCacheDebounce, DefaultCacheDebounce.Milliseconds())
	v.SetDefault(KeyFetchTimeout, DefaultFetchTimeout.Milliseconds())
	v.SetDefault(KeyFetchConcurrency, DefaultFetchConcurrency)
	v.SetDefault(KeyFetchRateLimit, DefaultFetchRateLimit)
	v.SetDefault(KeyStorageDriver, DefaultStorageDriver)
	v.SetDefault(KeyStorageDSN, "")
	v.SetDefault(KeyServerAddr, DefaultServerAddr)
	v.SetDefault(KeyGitHubToken, "")
}

// File returns the config file in use, or "" when running on defaults.
func (c *Config) File() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.ConfigFileUsed()
}

// Set overrides key for the rest of the process lifetime.
func (c *Config) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.Set(key, value)
}

// Watch reloads the config file whenever it changes on disk.
func (c *Config) Watch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.v.ConfigFileUsed() != "" {
		c.v.WatchConfig()
	}
}

// AllSettings returns every resolved key, for display.
func (c *Config) AllSettings() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.AllSettings()
}

func (c *Config) bool(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.GetBool(key)
}

func (c *Config) int(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.GetInt(key)
}

func (c *Config) string(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.GetString(key)
}

func (c *Config) millis(key string, fallback time.Duration) time.Duration {
	ms := c.int(key)
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// CacheEnabled reports whether the metadata cache is active.
func (c *Config) CacheEnabled() bool { return c.bool(KeyCacheEnabled) }

// CacheMaxAge is the entry TTL.
func (c *Config) CacheMaxAge() time.Duration { return c.millis(KeyCacheMaxAge, DefaultCacheMaxAge) }

// CacheMaxSize bounds each cache keyspace.
func (c *Config) CacheMaxSize() int {
	if n := c.int(KeyCacheMaxSize); n > 0 {
		return n
	}
	return DefaultCacheMaxSize
}

// CacheDebounce is the quiet period before a snapshot write.
func (c *Config) CacheDebounce() time.Duration {
	return c.millis(KeyCacheDebounce, DefaultCacheDebounce)
}

// FetchTimeout bounds a whole analysis run's registry fetches.
func (c *Config) FetchTimeout() time.Duration {
	return c.millis(KeyFetchTimeout, DefaultFetchTimeout)
}

// FetchConcurrency is the number of registry requests in flight.
func (c *Config) FetchConcurrency() int {
	if n := c.int(KeyFetchConcurrency); n > 0 {
		return n
	}
	return DefaultFetchConcurrency
}

// FetchRateLimit is the per-registry request rate in requests per second.
func (c *Config) FetchRateLimit() float64 {
	if n := c.int(KeyFetchRateLimit); n > 0 {
		return float64(n)
	}
	return DefaultFetchRateLimit
}

// StorageDriver selects the snapshot backend.
func (c *Config) StorageDriver() string { return c.string(KeyStorageDriver) }

// StorageDSN configures the snapshot backend.
func (c *Config) StorageDSN() string { return c.string(KeyStorageDSN) }

// ServerAddr is the listen address of "licensetower serve".
func (c *Config) ServerAddr() string { return c.string(KeyServerAddr) }

// GitHubToken authenticates GitHub API calls when set.
func (c *Config) GitHubToken() string { return c.string(KeyGitHubToken) }
