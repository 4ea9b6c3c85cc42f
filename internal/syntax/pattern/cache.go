package pattern

import (
	"fmt"
	"sync"
)

type cacheKey struct {
	pattern string
	opts    Options
}

// Cache holds compiled matchers. Anonymous entries are keyed by pattern and
// options; named entries can be recompiled in place. It is safe for
// concurrent use.
type Cache struct {
	mu    sync.RWMutex
	byKey map[cacheKey]*Matcher
	named map[string]*Matcher
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		byKey: make(map[cacheKey]*Matcher),
		named: make(map[string]*Matcher),
	}
}

// Compile returns the cached matcher for a UTF-8 pattern, compiling it on
// first use. Failures are not cached.
func (c *Cache) Compile(pattern string, opts Options) (*Matcher, error) {
	opts.PatternEncoding, opts.TargetEncoding = UTF8, UTF8
	key := cacheKey{pattern: pattern, opts: opts}

	c.mu.RLock()
	m, ok := c.byKey[key]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := Compile([]byte(pattern), opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byKey[key]; ok {
		return existing, nil
	}
	c.byKey[key] = m
	return m, nil
}

// Recompile compiles pattern and stores it under name. On failure the
// matcher previously stored under name, if any, stays in place.
func (c *Cache) Recompile(name string, pattern []byte, opts Options) (*Matcher, error) {
	m, err := Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("recompile %s: %w", name, err)
	}

	c.mu.Lock()
	c.named[name] = m
	c.mu.Unlock()
	return m, nil
}

// Named returns the matcher stored under name.
func (c *Cache) Named(name string) (*Matcher, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.named[name]
	return m, ok
}

// Len returns the number of cached matchers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey) + len(c.named)
}
