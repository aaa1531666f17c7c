package regex

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheSize is the number of compiled patterns kept by Cached.
const CacheSize = 256

// patternCache returns the process-wide LRU of compiled patterns, creating it
// on first use.
var patternCache = sync.OnceValue(func() *lru.Cache[string, *Regex] {
	c, err := lru.New[string, *Regex](CacheSize)
	if err != nil {
		panic("regex: " + err.Error())
	}
	return c
})

// Cached returns the compiled form of pattern with default options, compiling
// it only if it is not in the process-wide cache yet. Patterns that fail to
// compile are not cached.
func Cached(pattern string) (*Regex, error) {
	c := patternCache()
	if re, ok := c.Get(pattern); ok {
		return re, nil
	}

	// compile outside the cache lock, a concurrent compile of the same
	// pattern only costs time
	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	if prev, ok, _ := c.PeekOrAdd(pattern, re); ok {
		c.Get(pattern)
		return prev, nil
	}
	return re, nil
}

// PurgeCache drops every pattern from the cache used by Cached.
func PurgeCache() {
	patternCache().Purge()
}

func cacheLen() int {
	return patternCache().Len()
}
