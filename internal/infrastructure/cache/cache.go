package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
)

// ResultCache memoizes full search responses keyed by the normalized
// request. The corpus changes only on reindex, so entries never expire
// by time; a reindex event purges everything at once.
type ResultCache struct {
	lru      *lru.Cache[string, domain.SearchResponse]
	observer func(event string)
}

func New(size int) (*ResultCache, error) {
	if size <= 0 {
		size = 512
	}
	c, err := lru.New[string, domain.SearchResponse](size)
	if err != nil {
		return nil, err
	}
	return &ResultCache{lru: c}, nil
}

// SetObserver installs a callback receiving "hit", "miss" and "purge"
// events, used to feed cache counters without a metrics dependency here.
func (c *ResultCache) SetObserver(fn func(event string)) {
	c.observer = fn
}

func (c *ResultCache) observe(event string) {
	if c.observer != nil {
		c.observer(event)
	}
}

func (c *ResultCache) Get(key string) (domain.SearchResponse, bool) {
	resp, ok := c.lru.Get(key)
	if ok {
		c.observe("hit")
	} else {
		c.observe("miss")
	}
	return resp, ok
}

func (c *ResultCache) Add(key string, resp domain.SearchResponse) {
	c.lru.Add(key, resp)
}

func (c *ResultCache) Purge() {
	c.lru.Purge()
	c.observe("purge")
}

func (c *ResultCache) Len() int {
	return c.lru.Len()
}
