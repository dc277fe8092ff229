package lexer

import (
	"github.com/segmentio/fasthash/fnv1a"

	"github.com/voidwyrm-2/Mend/pkg/token"
)

// Cache memoises LexSource results keyed by a hash of the source text.
// Cached lines are shared; callers must not mutate them.
type Cache struct {
	entries map[uint64]cacheEntry
	hits    int
}

type cacheEntry struct {
	src   string
	lines []token.Line
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]cacheEntry)}
}

// LexSource returns the token-lines for src, lexing it on first use.
func (c *Cache) LexSource(src string) []token.Line {
	if c == nil {
		return LexSource(src)
	}
	key := fnv1a.HashString64(src)
	if entry, ok := c.entries[key]; ok && entry.src == src {
		c.hits++
		return entry.lines
	}
	lines := LexSource(src)
	c.entries[key] = cacheEntry{src: src, lines: lines}
	return lines
}

// Hits reports how many lookups were served from the cache.
func (c *Cache) Hits() int {
	if c == nil {
		return 0
	}
	return c.hits
}

// Len reports the number of cached sources.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
