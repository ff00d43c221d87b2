package assembler

import (
	"context"
	"strings"
	"sync"
)

type tagKey struct {
	project string
	version string
}

type tagEntry struct {
	once sync.Once
	url  string
}

// tagCache memoises tag lookups within one request. Concurrent callers
// asking for the same key share a single upstream call.
type tagCache struct {
	resolver TagResolver

	mu      sync.Mutex
	entries map[tagKey]*tagEntry
}

func newTagCache(r TagResolver) *tagCache {
	return &tagCache{
		resolver: r,
		entries:  make(map[tagKey]*tagEntry),
	}
}

func (c *tagCache) resolve(ctx context.Context, project, version string) string {
	key := tagKey{project: strings.TrimSpace(project), version: version}
	if key.project == "" {
		return ""
	}

	if c.resolver == nil {
		return key.project
	}

	c.mu.Lock()

	entry, ok := c.entries[key]
	if !ok {
		entry = &tagEntry{}
		c.entries[key] = entry
	}

	c.mu.Unlock()

	entry.once.Do(func() {
		entry.url = c.resolver.Resolve(ctx, key.project, key.version)
	})

	return entry.url
}
