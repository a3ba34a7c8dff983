package expressions

import "sync"

// programs memoizes compiled expressions by source text. Safe for concurrent use.
type programs[P any] struct {
	mu sync.RWMutex
	m  map[string]P
}

// get returns the cached program for src, compiling it on first use. Failed
// compilations are not cached.
func (c *programs[P]) get(src string, compile func(string) (P, error)) (P, error) {
	c.mu.RLock()
	p, ok := c.m[src]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.m[src]; ok {
		return p, nil
	}
	p, err := compile(src)
	if err != nil {
		var zero P
		return zero, err
	}
	if c.m == nil {
		c.m = make(map[string]P)
	}
	c.m[src] = p
	return p, nil
}

func (c *programs[P]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
