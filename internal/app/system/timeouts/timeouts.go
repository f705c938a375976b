// Package timeouts provides centralized timeout values for handler
// operations. Handlers wrap database and storage calls in
// context.WithTimeout using these values so the budget for each class of
// operation lives in one place.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, moderate writes
//   - Long: multi-collection writes, transactions
//   - Batch: bulk imports, file uploads
package timeouts

import (
	"sync"
	"time"
)

// Defaults used unless Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { mu.RLock(); defer mu.RUnlock(); return ping }

// Short returns the timeout for single-document reads.
func Short() time.Duration { mu.RLock(); defer mu.RUnlock(); return short }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { mu.RLock(); defer mu.RUnlock(); return medium }

// Long returns the timeout for transactions and multi-collection writes.
func Long() time.Duration { mu.RLock(); defer mu.RUnlock(); return long }

// Batch returns the timeout for bulk imports and uploads.
func Batch() time.Duration { mu.RLock(); defer mu.RUnlock(); return batch }

// Config holds override values. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure overrides timeout values at startup. Zero fields are ignored.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}

// Reset restores defaults. Useful for testing.
func Reset() {
	Configure(Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	})
}
