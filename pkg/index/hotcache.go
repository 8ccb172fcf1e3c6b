package index

import (
	"math"
	"slices"
	"sync"

	"github.com/bastiangx/unjumble/pkg/signature"
	"github.com/charmbracelet/log"
)

// HotCache memoizes query results of an Index, keyed by the alphagram of
// the query so every anagram of a query shares one entry. The least recently
// used entry is evicted once maxEntries results are held.
//
// Returned results are shared between callers and must not be modified.
type HotCache struct {
	idx         *Index
	results     map[string]Result
	accessTime  map[string]int64
	accessCount int64
	hits        int
	misses      int
	maxEntries  int
	mu          sync.Mutex
}

// NewHotCache wraps idx. maxEntries below 1 is treated as 1.
func NewHotCache(idx *Index, maxEntries int) *HotCache {
	maxEntries = max(maxEntries, 1)
	return &HotCache{
		idx:        idx,
		results:    make(map[string]Result, maxEntries),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// QueryWord answers like Index.QueryWord, from the cache when possible.
func (hc *HotCache) QueryWord(query string) (Result, error) {
	key, err := signature.Alphagram(query)
	if err != nil {
		return nil, err
	}

	hc.mu.Lock()
	if result, ok := hc.results[key]; ok {
		hc.markAccessed(key)
		hc.hits++
		hc.mu.Unlock()
		return result, nil
	}
	hc.mu.Unlock()

	result, err := hc.idx.QueryWord(key)
	if err != nil {
		return nil, err
	}
	result = slices.Clip(result)

	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.misses++
	if _, ok := hc.results[key]; !ok && len(hc.results) >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.results[key] = result
	hc.markAccessed(key)
	return result, nil
}

// Len returns the number of indexed words.
func (hc *HotCache) Len() int {
	return hc.idx.Len()
}

// Stats returns the statistics of the wrapped index.
func (hc *HotCache) Stats() Stats {
	return hc.idx.Stats()
}

// CacheStats reports cache occupancy and hit counts.
func (hc *HotCache) CacheStats() map[string]int {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"hotCacheEntries": len(hc.results),
		"maxHotEntries":   hc.maxEntries,
		"hotCacheHits":    hc.hits,
		"hotCacheMisses":  hc.misses,
	}
}

func (hc *HotCache) markAccessed(key string) {
	hc.accessCount++
	hc.accessTime[key] = hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, accessTime := range hc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(hc.results, oldestKey)
		delete(hc.accessTime, oldestKey)
		log.Debugf("Evicted '%s' from hot cache", oldestKey)
	}
}
