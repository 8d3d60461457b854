// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, retry policy bounds, and cross-cutting keys that are
shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the ops HTTP server.
  - Kitsu Client: Rate limiting, retry, and pagination bounds for the catalog API.
  - Cache Taxonomy: Key prefixes and TTL for the response cache.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "kisetsu"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Sync runs triggered over HTTP can take minutes, so this is generous.
	DefaultWriteTimeout = 10 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Kitsu Catalog API

const (
	// KitsuMinRequestInterval is the minimum spacing between consecutive outbound
	// calls to the Kitsu API, shared process-wide across all callers.
	KitsuMinRequestInterval = 500 * time.Millisecond

	// KitsuMaxRetries is the number of retries after the initial attempt for a
	// transient failure (429, 5xx, network error).
	KitsuMaxRetries = 5

	// KitsuBaseBackoff is the delay of the first retry; doubles per attempt.
	KitsuBaseBackoff = 1 * time.Second

	// KitsuMaxBackoff caps the exponential retry delay.
	KitsuMaxBackoff = 32 * time.Second

	// KitsuPageSize is the page[limit] sent on every paginated request.
	// Kitsu rejects values above 20 for the anime collection.
	KitsuPageSize = 20

	// KitsuMaxPages is a hard safety ceiling on pagination. Hitting it is
	// logged as a warning, not treated as an error.
	KitsuMaxPages = 100

	// KitsuRequestTimeout bounds each individual HTTP attempt.
	KitsuRequestTimeout = 30 * time.Second
)

// # Response Cache

const (
	// CacheKeyPrefix namespaces all response-cache keys.
	CacheKeyPrefix = "kitsu"

	// DefaultCacheTTL is how long a cached API page stays fresh.
	DefaultCacheTTL = 7 * 24 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID  = "X-Request-ID"
	HeaderContentType = "Content-Type"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCore = "core"
	SchemaSync = "sync"
)
