package cache

import "time"

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get returns the value and true when the key is present and unexpired.
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value from the cache
	Delete(key string)

	// DeletePrefix removes every key starting with prefix, e.g. all cached car listings.
	DeletePrefix(prefix string)

	// Flush removes all items
	Flush()
}
