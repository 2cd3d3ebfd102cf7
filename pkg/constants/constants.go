// Package constants provides shared constants used throughout the propverify codebase.
// This includes timeouts, limits, file permissions, and cache settings
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// LookupTimeout bounds the concurrent source lookups for one property
	LookupTimeout = 5 * time.Second

	// StoreTimeout bounds a single upsert or read against the unified store
	StoreTimeout = 5 * time.Second

	// ShutdownTimeout is how long the server waits for in-flight requests on shutdown
	ShutdownTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached unified records
	CacheTTL = 15 * time.Minute

	// CacheCleanupInterval is how often to clean expired in-process cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// Limit constants
const (
	// ChannelBufferSize is the default buffer size for event channels
	ChannelBufferSize = 256

	// MaxPropertyIDLength is the longest property id accepted over HTTP
	MaxPropertyIDLength = 64

	// ProvenanceHistoryLimit is how many provenance entries are kept per field
	ProvenanceHistoryLimit = 20
)

// Format constants
const (
	// DateLayout is the canonical date layout of every normalized date
	DateLayout = "2006-01-02"
)
