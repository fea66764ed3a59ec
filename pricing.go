package coinfolio

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource resolves raw asset prices from an external service.
// Implemented by the cryptocompare package.
type PriceSource interface {
	// Spot returns the current price of one unit of asset in currency.
	Spot(ctx context.Context, asset Asset, currency string) (decimal.Decimal, error)
	// Historical returns the price of one unit of asset in currency at
	// the given time.
	Historical(ctx context.Context, asset Asset, currency string, at time.Time) (decimal.Decimal, error)
}

// spotTTL is how long a cached spot price stays fresh.
const spotTTL = 5 * time.Minute

// historical prices are bucketed by hour; a finer resolution buys nothing
// from the price services.
const historyBucket = time.Hour

type priceKey struct {
	asset    string
	currency string
	bucket   int64 // 0 for spot
}

type priceEntry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// PriceCache caches resolved prices per (asset, currency, time bucket).
// Historical entries never expire; spot entries go stale after spotTTL.
// It is safe for concurrent use by the parallel fetch path.
//
// The cache is an explicit object constructed once per run and injected
// into the Converter, so cache lifetime and test isolation stay visible.
type PriceCache struct {
	mu      sync.Mutex
	entries map[priceKey]priceEntry
	now     func() time.Time
}

// NewPriceCache returns an empty price cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{entries: make(map[priceKey]priceEntry), now: time.Now}
}

func (c *PriceCache) get(key priceKey) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return decimal.Zero, false
	}
	if key.bucket == 0 && c.now().Sub(e.fetchedAt) > spotTTL {
		delete(c.entries, key)
		return decimal.Zero, false
	}
	return e.price, true
}

func (c *PriceCache) put(key priceKey, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = priceEntry{price: price, fetchedAt: c.now()}
}

// Converter resolves fiat values for asset quantities relative to a
// reporting currency, consulting the cache before any external lookup.
type Converter struct {
	source PriceSource
	cache  *PriceCache
}

// NewConverter returns a Converter over the given source and cache.
func NewConverter(source PriceSource, cache *PriceCache) *Converter {
	return &Converter{source: source, cache: cache}
}

// PriceOf resolves the spot price of one unit of asset in currency.
// Failure is a PriceUnavailable: a per-asset, non-fatal condition.
func (c *Converter) PriceOf(ctx context.Context, asset Asset, currency string) (Money, error) {
	if asset.ID == currency {
		return M(1, currency), nil
	}
	key := priceKey{asset: asset.ID, currency: currency}
	if price, ok := c.cache.get(key); ok {
		return M(price, currency), nil
	}
	price, err := c.source.Spot(ctx, asset, currency)
	if err != nil {
		return Money{}, &PriceUnavailable{Asset: asset, Cause: err}
	}
	c.cache.put(key, price)
	return M(price, currency), nil
}

// PriceAt resolves the historical price of one unit of asset in currency at
// the given time. Historical prices are cached forever.
func (c *Converter) PriceAt(ctx context.Context, asset Asset, currency string, at time.Time) (Money, error) {
	if asset.ID == currency {
		return M(1, currency), nil
	}
	key := priceKey{asset: asset.ID, currency: currency, bucket: at.Truncate(historyBucket).Unix()}
	if price, ok := c.cache.get(key); ok {
		return M(price, currency), nil
	}
	price, err := c.source.Historical(ctx, asset, currency, at)
	if err != nil {
		return Money{}, &PriceUnavailable{Asset: asset, Cause: err}
	}
	c.cache.put(key, price)
	return M(price, currency), nil
}

// Value prices an asset quantity in the given currency at spot.
func (c *Converter) Value(ctx context.Context, amount Quantity, asset Asset, currency string) (Money, error) {
	price, err := c.PriceOf(ctx, asset, currency)
	if err != nil {
		return Money{}, err
	}
	return price.Mul(amount), nil
}
