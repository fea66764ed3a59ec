// Package accounting implements the tax-lot accounting collaborator: FIFO
// lot matching over a trade stream, realized and taxable profit/loss, and
// per-asset tax-free allowances.
//
// Taxable gains follow the private-sale rule the original German tax
// context uses: a disposal is taxable only when the matched lot was held
// for less than one year.
package accounting

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/etnz/coinfolio"
)

// taxFreeHolding is the holding period after which a disposal is tax-free.
const taxFreeHolding = 365 * 24 * time.Hour

// Accountant processes a trade history into profit/loss totals and
// per-asset allowance details. It implements coinfolio.Accountant.
type Accountant struct {
	converter *coinfolio.Converter
	currency  string
	now       func() time.Time
}

// New returns an Accountant reporting in the given currency.
func New(converter *coinfolio.Converter, currency string) *Accountant {
	return &Accountant{converter: converter, currency: currency, now: time.Now}
}

// value converts a quote-denominated amount into the reporting currency at
// the trade's time.
func (a *Accountant) value(ctx context.Context, amount coinfolio.Quantity, quote coinfolio.Asset, at time.Time) (coinfolio.Money, error) {
	if quote.ID == a.currency {
		return coinfolio.M(amount.Decimal(), a.currency), nil
	}
	price, err := a.converter.PriceAt(ctx, quote, a.currency, at)
	if err != nil {
		return coinfolio.Money{}, err
	}
	return price.Mul(amount), nil
}

// ProcessHistory replays the trade stream chronologically, matching sells
// against buy lots FIFO. Realized gains count toward the overview when the
// disposal falls inside [start, end]; gains on lots held for less than
// taxFreeHolding also count as taxable. Margin results and loan interest
// are taken at face value and are always taxable.
func (a *Accountant) ProcessHistory(ctx context.Context, start, end time.Time, history coinfolio.History) (*coinfolio.TaxReport, error) {
	trades := slices.Clone(history.Trades)
	slices.SortStableFunc(trades, func(x, y coinfolio.Trade) int {
		return x.Timestamp.Compare(y.Timestamp)
	})

	open := make(map[coinfolio.Asset]lots)
	profitLoss := coinfolio.M(0, a.currency)
	taxable := coinfolio.M(0, a.currency)

	for _, t := range trades {
		// fees charged in the quote asset adjust the trade's cash leg
		quoteTotal := t.Cost()
		if t.FeeAsset == t.Pair.Quote && !t.Fee.IsZero() {
			if t.Type == coinfolio.Buy {
				quoteTotal = quoteTotal.Add(t.Fee)
			} else {
				quoteTotal = quoteTotal.Sub(t.Fee)
			}
		}
		cash, err := a.value(ctx, quoteTotal, t.Pair.Quote, t.Timestamp)
		if err != nil {
			return nil, err
		}

		base := t.Pair.Base
		switch t.Type {
		case coinfolio.Buy:
			open[base] = append(open[base], lot{Time: t.Timestamp, Quantity: t.Amount, Cost: cash})

		case coinfolio.Sell:
			matched, remaining := open[base].take(t.Amount)
			open[base] = remaining

			covered := matched.quantity()
			if covered.LessThan(t.Amount) {
				// sells beyond the known lots have no basis: the acquisition is
				// missing from the history, treat its cost as zero
				log.Printf("sell of %s %s on %s exceeds known lots by %s, assuming zero cost basis",
					t.Amount, base, t.Timestamp.Format("2006-01-02"), t.Amount.Sub(covered))
			}

			gain := cash.Sub(matched.cost())
			inWindow := !t.Timestamp.Before(start) && !t.Timestamp.After(end)
			if !inWindow {
				continue
			}
			profitLoss = profitLoss.Add(gain)

			for _, m := range matched {
				if t.Timestamp.Sub(m.Time) >= taxFreeHolding {
					continue // held long enough, tax-free
				}
				share := cash.Mul(m.Quantity).Div(t.Amount)
				taxable = taxable.Add(share.Sub(m.Cost))
			}
			if covered.LessThan(t.Amount) {
				// the uncovered share has an unknown acquisition date: taxable
				share := cash.Mul(t.Amount.Sub(covered)).Div(t.Amount)
				taxable = taxable.Add(share)
			}
		}
	}

	for _, m := range history.MarginTrades {
		if m.Timestamp.Before(start) || m.Timestamp.After(end) {
			continue
		}
		result, err := a.value(ctx, m.ProfitLoss, m.Pair.Quote, m.Timestamp)
		if err != nil {
			return nil, err
		}
		profitLoss = profitLoss.Add(result)
		taxable = taxable.Add(result)
	}
	for _, l := range history.Loans {
		if l.Close.Before(start) || l.Close.After(end) {
			continue
		}
		earned, err := a.value(ctx, l.Earned, l.Asset, l.Close)
		if err != nil {
			return nil, err
		}
		profitLoss = profitLoss.Add(earned)
		taxable = taxable.Add(earned)
	}

	report := &coinfolio.TaxReport{
		Overview: coinfolio.TaxOverview{
			TotalProfitLoss:        profitLoss,
			TotalTaxableProfitLoss: taxable,
		},
		Details: make(map[coinfolio.Asset]coinfolio.AllowanceDetail),
	}
	// a window ending in the future must not mature young lots early:
	// holding periods only accrue up to the wall clock
	ref := end
	if now := a.now(); ref.After(now) {
		ref = now
	}
	for asset, held := range open {
		total := held.quantity()
		if total.IsZero() {
			continue
		}
		var allowance coinfolio.Quantity
		for _, x := range held {
			if ref.Sub(x.Time) >= taxFreeHolding {
				allowance = allowance.Add(x.Quantity)
			}
		}
		report.Details[asset] = coinfolio.AllowanceDetail{
			Allowance:       allowance,
			AverageBuyPrice: held.cost().Div(total),
		}
	}
	return report, nil
}
