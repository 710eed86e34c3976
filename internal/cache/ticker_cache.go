// Package cache holds the in-process symbol resolution cache and the
// optional redis client used for response caching.
package cache

import (
	"sync"
	"time"
)

// DefaultTickerTTL is how long a resolved ISIN stays valid; listings barely
// change intraday.
const DefaultTickerTTL = time.Hour

type entry struct {
	isin       string
	insertedAt time.Time
}

// TickerCache maps short ticker symbols to the exchange-internal ISIN codes
// the wire protocol requires. Stocks and ETFs get separate namespaces since
// the upstream issues their identifiers from separate listing reports.
// Entries expire lazily: a read past the TTL removes the entry and reports a
// miss. Safe for concurrent use.
type TickerCache struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	stocks map[string]entry
	etfs   map[string]entry
}

// NewTickerCache creates a cache with the given TTL. A zero ttl falls back
// to DefaultTickerTTL.
func NewTickerCache(ttl time.Duration) *TickerCache {
	if ttl <= 0 {
		ttl = DefaultTickerTTL
	}
	return &TickerCache{
		ttl:    ttl,
		now:    time.Now,
		stocks: make(map[string]entry),
		etfs:   make(map[string]entry),
	}
}

// SetClock replaces the time source, for tests.
func (c *TickerCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *TickerCache) GetStockISIN(ticker string) (string, bool) {
	return c.get(&c.stocks, ticker)
}

func (c *TickerCache) PutStockISIN(ticker, isin string) {
	c.put(&c.stocks, ticker, isin)
}

func (c *TickerCache) PutAllStockISINs(mapping map[string]string) {
	c.putAll(&c.stocks, mapping)
}

func (c *TickerCache) GetEtfISIN(ticker string) (string, bool) {
	return c.get(&c.etfs, ticker)
}

func (c *TickerCache) PutEtfISIN(ticker, isin string) {
	c.put(&c.etfs, ticker, isin)
}

func (c *TickerCache) PutAllEtfISINs(mapping map[string]string) {
	c.putAll(&c.etfs, mapping)
}

// Clear drops both namespaces.
func (c *TickerCache) Clear() {
	c.mu.Lock()
	c.stocks = make(map[string]entry)
	c.etfs = make(map[string]entry)
	c.mu.Unlock()
}

// Sizes reports the live entry counts (stocks, etfs) without evicting.
func (c *TickerCache) Sizes() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stocks), len(c.etfs)
}

// The namespace is passed by pointer so the field is only dereferenced under
// the lock; Clear swaps the maps out wholesale.
func (c *TickerCache) get(space *map[string]entry, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := (*space)[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.insertedAt) > c.ttl {
		delete(*space, key)
		return "", false
	}
	return e.isin, true
}

func (c *TickerCache) put(space *map[string]entry, key, isin string) {
	c.mu.Lock()
	(*space)[key] = entry{isin: isin, insertedAt: c.now()}
	c.mu.Unlock()
}

func (c *TickerCache) putAll(space *map[string]entry, mapping map[string]string) {
	c.mu.Lock()
	now := c.now()
	for key, isin := range mapping {
		(*space)[key] = entry{isin: isin, insertedAt: now}
	}
	c.mu.Unlock()
}
