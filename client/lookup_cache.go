package client

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.tablekeeper.dev/seating/allocator"
)

// LookupCache caches observed TableViews of seated groups.
type LookupCache struct {
	cache *lru.Cache
	ttl   time.Duration
}

// NewLookupCache returns a LookupCache of the given size (which must be > 0)
// and caching Duration.
func NewLookupCache(size int, ttl time.Duration) *LookupCache {
	var cache, err = lru.New(size)
	if err != nil {
		panic(err.Error()) // Only errors on size <= 0.
	}
	return &LookupCache{cache: cache, ttl: ttl}
}

// Update caches the TableView of group |id|, or invalidates it if |view| is nil.
func (lc *LookupCache) Update(id allocator.GroupID, view *allocator.TableView) {
	if view == nil {
		lc.cache.Remove(id)
	} else {
		lc.cache.Add(id, cachedView{view: *view, at: timeNow()})
	}
}

// View returns the cached TableView of group |id|, if present and not expired.
func (lc *LookupCache) View(id allocator.GroupID) (allocator.TableView, bool) {
	if v, ok := lc.cache.Get(id); ok {
		// If the TTL has elapsed, treat as a cache miss and remove.
		if cv := v.(cachedView); cv.at.Add(lc.ttl).Before(timeNow()) {
			lc.cache.Remove(id)
		} else {
			return cv.view, true
		}
	}
	return allocator.TableView{}, false
}

type cachedView struct {
	view allocator.TableView
	at   time.Time
}

var timeNow = time.Now
