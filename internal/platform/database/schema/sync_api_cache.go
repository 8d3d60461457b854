package schema

// SyncAPICacheTable represents the 'sync.api_cache' table.
// One row per fetched Kitsu page, unique on cache_key.
type SyncAPICacheTable struct {
	Table     string
	CacheKey  string
	Response  string
	CreatedAt string
	ExpiresAt string
}

// SyncAPICache is the schema definition for sync.api_cache
var SyncAPICache = SyncAPICacheTable{
	Table:     "sync.api_cache",
	CacheKey:  "cache_key",
	Response:  "response",
	CreatedAt: "created_at",
	ExpiresAt: "expires_at",
}
