// Package cache provides an in-memory LRU cache for preview audio payloads.
package cache

import "errors"

// Cache errors.
var (
	ErrItemTooLarge = errors.New("item exceeds cache capacity")
)

// Stats holds cache metrics.
type Stats struct {
	Capacity  int64
	Size      int64
	ItemCount int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}
