// Package timeouts provides centralized timeout values for handler operations.
//
// These timeouts are used with context.WithTimeout for database and
// storage I/O in HTTP handlers. Centralizing the values keeps handlers
// consistent and makes tuning a one-line change.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: simple single-document reads or lookups
//   - Medium: list queries, moderate writes, multi-step reads
//   - Long: validation and delete flows touching multiple collections
//   - Upload: multipart photo persistence
package timeouts

import (
	"context"
	"sync"
	"time"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultUpload = 60 * time.Second
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	upload = DefaultUpload
)

// Ping returns the timeout for health checks and connectivity verification.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for simple operations like single-document reads.
// Examples: get by ID, lookup by email, load a profile.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for moderate operations like list queries.
// Examples: paginated report lists, leaderboards, simple creates/updates.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for operations touching multiple collections.
// Examples: report validation with point awards, deletes with photo cleanup.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Upload returns the timeout for multipart photo persistence.
func Upload() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return upload
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Upload time.Duration
}

// Configure sets custom timeout values during application startup,
// before handlers are registered. Zero values in the config are
// ignored, keeping the current (or default) values.
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
	if cfg.Upload > 0 {
		upload = cfg.Upload
	}
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
	upload = DefaultUpload
}

// WithShort derives a context bounded by the Short timeout.
func WithShort(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Short())
}

// WithMedium derives a context bounded by the Medium timeout.
func WithMedium(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Medium())
}

// WithLong derives a context bounded by the Long timeout.
func WithLong(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Long())
}

// WithUpload derives a context bounded by the Upload timeout.
func WithUpload(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Upload())
}
