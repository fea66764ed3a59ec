package coinfolio

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// The workload is I/O bound, one network round-trip per account, so
// independent accounts fetch in parallel under a bounded worker pool.
// Each worker accumulates into its own slot and results merge afterwards;
// one account's failure or timeout never cancels its siblings.

// CollectOptions bound the parallel per-account collection.
type CollectOptions struct {
	Workers int           // max concurrent account fetches; default 4
	Timeout time.Duration // per-account budget; default 30s
}

func (o CollectOptions) withDefaults() CollectOptions {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// Skipped records one account left out of a run and why.
type Skipped struct {
	Account string
	Reason  string
}

// BalanceSet is the outcome of a cross-account balance collection.
type BalanceSet struct {
	Snapshots []map[Asset]Balance
	Skipped   []Skipped
}

// CollectBalances validates and queries every source, in parallel. An
// account whose validation or query fails (or times out) is recorded in
// Skipped and the run continues: one account must never abort the whole
// aggregation.
func CollectBalances(ctx context.Context, sources []Source, opts CollectOptions) *BalanceSet {
	opts = opts.withDefaults()

	var mu sync.Mutex
	set := &BalanceSet{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, source := range sources {
		source := source
		g.Go(func() error {
			name := source.Account().Name
			actx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()

			if ok, reason := source.Validate(actx); !ok {
				log.Printf("skipping %s: credentials not valid (%s)", name, reason)
				mu.Lock()
				set.Skipped = append(set.Skipped, Skipped{Account: name, Reason: reason})
				mu.Unlock()
				return nil
			}
			balances, err := source.Balances(actx)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = &SourceUnavailable{Account: name, Cause: err}
				}
				log.Printf("skipping %s: %v", name, err)
				mu.Lock()
				set.Skipped = append(set.Skipped, Skipped{Account: name, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			log.Printf("fetched balances for %d assets from %s", len(balances), name)
			mu.Lock()
			set.Snapshots = append(set.Snapshots, balances)
			mu.Unlock()
			return nil
		})
	}
	g.Wait() // workers never return an error; failures are recorded per account
	return set
}

// TradeSet is the outcome of a cross-account trade collection.
type TradeSet struct {
	Trades  map[string][]Trade // keyed by account name
	Skipped []Skipped
}

// CollectTrades validates and queries every source's trade history within
// [from, to], in parallel, with the same isolation rules as
// CollectBalances.
func CollectTrades(ctx context.Context, sources []Source, from, to time.Time, opts CollectOptions) *TradeSet {
	opts = opts.withDefaults()

	var mu sync.Mutex
	set := &TradeSet{Trades: make(map[string][]Trade)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, source := range sources {
		source := source
		g.Go(func() error {
			name := source.Account().Name
			actx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()

			if ok, reason := source.Validate(actx); !ok {
				log.Printf("skipping %s: credentials not valid (%s)", name, reason)
				mu.Lock()
				set.Skipped = append(set.Skipped, Skipped{Account: name, Reason: reason})
				mu.Unlock()
				return nil
			}
			trades, err := source.Trades(actx, from, to)
			if err != nil {
				log.Printf("skipping %s: %v", name, err)
				mu.Lock()
				set.Skipped = append(set.Skipped, Skipped{Account: name, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			log.Printf("fetched %d trades from %s", len(trades), name)
			mu.Lock()
			set.Trades[name] = trades
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return set
}
