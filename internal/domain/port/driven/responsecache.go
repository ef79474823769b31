package driven

import "time"

// ResponseCache defines the driven port for the short-lived response cache.
// Keys are opaque; callers embed every dimension that affects the value.
type ResponseCache interface {
	// Get returns the value while it is fresh. Expired entries are evicted on
	// read and reported absent.
	Get(key string) (any, bool)
	// Set replaces any existing entry. ttl <= 0 selects the default TTL.
	Set(key string, value any, ttl time.Duration)
	Invalidate(key string)
	// InvalidatePrefix drops every key starting with prefix; "" drops all.
	InvalidatePrefix(prefix string)
}
