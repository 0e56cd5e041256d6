// Package marketfeed supplies last-traded prices to the order pipeline,
// with a short-TTL cache in front of the broker's quote endpoint.
package marketfeed

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"tradeterm/internal/metrics"
	"tradeterm/internal/model"
)

// LTP prices go stale within a second; the cache only absorbs bursts of
// orders against the same instrument.
const defaultTTL = 1 * time.Second

// Fetcher fetches a raw LTP from the broker's quote endpoint.
type Fetcher interface {
	FetchLTP(ctx context.Context, token, exchange string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, token, exchange string) (string, error)

func (f FetcherFunc) FetchLTP(ctx context.Context, token, exchange string) (string, error) {
	return f(ctx, token, exchange)
}

// Feed implements model.PriceFeed: redis cache first, broker on miss.
type Feed struct {
	fetcher Fetcher
	rdb     *goredis.Client // may be nil: cache disabled
	ttl     time.Duration
	metrics *metrics.Metrics // may be nil
}

// New creates a Feed. A nil redis client disables caching.
func New(fetcher Fetcher, rdb *goredis.Client, m *metrics.Metrics) *Feed {
	return &Feed{fetcher: fetcher, rdb: rdb, ttl: defaultTTL, metrics: m}
}

// LTP returns the last traded price for (token, exchange) as a decimal
// string, consulting the cache first.
func (f *Feed) LTP(ctx context.Context, token, exchange string) (string, error) {
	key := "ltp:" + exchange + ":" + token

	if f.rdb != nil {
		if cached, err := f.rdb.Get(ctx, key).Result(); err == nil && cached != "" {
			if f.metrics != nil {
				f.metrics.LTPCacheHits.Inc()
			}
			return cached, nil
		}
	}
	if f.metrics != nil {
		f.metrics.LTPCacheMisses.Inc()
	}

	ltp, err := f.fetcher.FetchLTP(ctx, token, exchange)
	if err != nil {
		return "", fmt.Errorf("fetch ltp %s:%s: %w", exchange, token, err)
	}

	if f.rdb != nil && ltp != "" {
		if err := f.rdb.Set(ctx, key, ltp, f.ttl).Err(); err != nil {
			log.Printf("[marketfeed] ltp cache write failed: %v", err)
		}
	}
	return ltp, nil
}

// CheckPrice is the price sanity check for limit orders. Market orders
// always pass. For limit orders this is a pass-through once both values
// parse as numbers — the extension point where circuit-limit and
// price-band enforcement belongs.
func CheckPrice(orderPrice, marketPrice, orderType string) bool {
	if orderType == model.OrderTypeMarket {
		return true
	}
	if _, err := decimal.NewFromString(orderPrice); err != nil {
		return false
	}
	if _, err := decimal.NewFromString(marketPrice); err != nil {
		return false
	}
	return true
}
