package coinfolio

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
)

// Balance is one asset position in an account snapshot. Amount is the
// source-of-truth quantity at query time. Value is a derived, point-in-time
// USD valuation that may be absent when pricing failed for that asset; it
// must never silently default to zero in aggregation.
type Balance struct {
	Asset  Asset
	Amount Quantity
	Value  *Money // nil when the source could not price the position
}

// AggregateBalance is the per-asset accumulation across all accounts.
type AggregateBalance struct {
	Asset    Asset
	Quantity Quantity
	Value    Money // in the reporting currency
	Partial  bool  // some positions could not be priced; Value understates
	Rank     int   // 1-based position after sorting by value
}

// Aggregation is the cross-account summary: rows sorted by value
// descending plus a synthetic total.
type Aggregation struct {
	Currency  string
	Rows      []AggregateBalance
	Total     Money
	Estimated bool // at least one row is partial: the total is a lower bound
}

// Aggregator folds per-account balance snapshots into a single
// cross-account summary, valuing positions through a Converter.
type Aggregator struct {
	converter *Converter
}

// NewAggregator returns an Aggregator valuing through converter.
func NewAggregator(converter *Converter) *Aggregator {
	return &Aggregator{converter: converter}
}

// usdBasis is the accumulation currency; a single reporting-currency rate
// divides every row at the end.
const usdBasis = "USD"

// Aggregate combines per-account balance snapshots (one map per account)
// into per-asset totals in the reporting currency.
//
// Quantities always accumulate. Values accumulate from the snapshot when
// present, otherwise through one converter lookup; when pricing fails the
// row is marked partial and only its value degrades. A missing price for
// one asset never aborts the table. The result is independent of the input
// order.
func (a *Aggregator) Aggregate(ctx context.Context, snapshots []map[Asset]Balance, currency string) (*Aggregation, error) {
	type acc struct {
		quantity Quantity
		value    Money
		partial  bool
	}
	totals := make(map[Asset]*acc)

	for _, snapshot := range snapshots {
		for asset, balance := range snapshot {
			t, ok := totals[asset]
			if !ok {
				t = &acc{value: M(0, usdBasis)}
				totals[asset] = t
			}
			t.quantity = t.quantity.Add(balance.Amount)

			switch {
			case balance.Value != nil:
				t.value = t.value.Add(*balance.Value)
			default:
				value, err := a.converter.Value(ctx, balance.Amount, asset, usdBasis)
				if err != nil {
					log.Printf("no %s value for %s: %v", usdBasis, asset, err)
					t.partial = true
					continue
				}
				t.value = t.value.Add(value)
			}
		}
	}

	agg := &Aggregation{Currency: currency, Total: M(0, currency)}
	if len(totals) == 0 {
		return agg, nil
	}

	// One reporting-currency/USD rate converts every accumulated value.
	rate, err := a.converter.PriceOf(ctx, NewAsset(currency), usdBasis)
	if err != nil {
		return nil, err
	}
	if rate.IsZero() {
		return nil, &PriceUnavailable{Asset: NewAsset(currency), Cause: fmt.Errorf("zero %s rate", usdBasis)}
	}

	for asset, t := range totals {
		row := AggregateBalance{
			Asset:    asset,
			Quantity: t.quantity,
			Value:    M(t.value.Decimal().Div(rate.Decimal()), currency),
			Partial:  t.partial,
		}
		agg.Rows = append(agg.Rows, row)
		agg.Total = agg.Total.Add(row.Value)
		if t.partial {
			agg.Estimated = true
		}
	}

	// Deterministic ordering: value descending, ties by asset ID ascending.
	slices.SortStableFunc(agg.Rows, func(x, y AggregateBalance) int {
		switch {
		case x.Value.GreaterThan(y.Value):
			return -1
		case y.Value.GreaterThan(x.Value):
			return 1
		default:
			return strings.Compare(x.Asset.ID, y.Asset.ID)
		}
	})
	for i := range agg.Rows {
		agg.Rows[i].Rank = i + 1
	}
	return agg, nil
}
