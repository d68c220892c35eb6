package cache

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory keeps facet lists in process. It is the fallback when no Redis
// address is configured; each replica then has its own copy.
type Memory struct {
	c   *gocache.Cache
	gen atomic.Int64
}

// NewMemory builds an in-process cache. A non-positive ttl means DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	ttl = ttlOrDefault(ttl)
	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]string, int64, bool, error) {
	gen := m.gen.Load()
	v, ok := m.c.Get(VersionedKey(key, gen))
	if !ok {
		return nil, gen, false, nil
	}
	values, ok := v.([]string)
	if !ok {
		return nil, gen, false, nil
	}
	return slices.Clone(values), gen, true, nil
}

func (m *Memory) Set(_ context.Context, key string, gen int64, values []string) error {
	if gen != m.gen.Load() {
		return nil
	}
	if values == nil {
		values = []string{}
	}
	m.c.Set(VersionedKey(key, gen), slices.Clone(values), gocache.DefaultExpiration)
	return nil
}

// Invalidate bumps the generation and drops the entries it hides.
func (m *Memory) Invalidate(_ context.Context) error {
	m.gen.Add(1)
	m.c.Flush()
	return nil
}
