// Package adapters implements the engine's external-system boundary
// (C7): geographic lookup, a cache/rate-limit counter, and an audit
// sink, each behind a small interface so the engine never imports a
// concrete driver directly. Grounded on the teacher's pkg/storage
// (HistoryStore interface + MemoryStore) and pkg/geoip (Service), which
// drew the same boundary around MaxMind and an in-memory store.
package adapters

import (
	"context"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

// GeoLookup resolves an IP address to a coarse location. Implementations
// must return quickly; the engine applies its own enrichment deadline
// (spec.md §4.6 step 3) and treats a timeout or error as "unknown
// location", never a request failure.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) (model.Location, error)
}

// Cache is the engine's rate-limit and response-cache boundary. Keys are
// opaque strings the caller constructs (e.g. "ratelimit:<clientIP>" or
// "result:<userID>:<ip>:<agent prefix>"); TTLs are caller-specified.
type Cache interface {
	// Incr increments key by 1, creating it with the given TTL if absent,
	// and returns the post-increment value. Used for fixed-window rate
	// limiting (spec.md §5).
	Incr(ctx context.Context, key string, ttlSeconds int) (int64, error)
	// Get returns the raw bytes stored at key, or ok=false if absent or
	// expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value at key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}

// AuditSink persists a completed scoring result for later review. The
// engine calls Record synchronously on the request path and waits for it
// to return; a sink error is logged, never surfaced to the caller
// (spec.md §7).
type AuditSink interface {
	Record(ctx context.Context, result model.Result) error
}
