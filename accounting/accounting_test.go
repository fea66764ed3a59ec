package accounting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/shopspring/decimal"
)

// fakePrices serves one fixed historical rate per asset/currency pair.
type fakePrices struct {
	rates map[string]decimal.Decimal // keyed "ASSET/CUR"
}

func (f *fakePrices) Spot(_ context.Context, asset coinfolio.Asset, currency string) (decimal.Decimal, error) {
	return f.lookup(asset, currency)
}

func (f *fakePrices) Historical(_ context.Context, asset coinfolio.Asset, currency string, _ time.Time) (decimal.Decimal, error) {
	return f.lookup(asset, currency)
}

func (f *fakePrices) lookup(asset coinfolio.Asset, currency string) (decimal.Decimal, error) {
	rate, ok := f.rates[asset.ID+"/"+currency]
	if !ok {
		return decimal.Zero, errors.New("no data")
	}
	return rate, nil
}

func newAccountant(rates map[string]decimal.Decimal) *Accountant {
	source := &fakePrices{rates: rates}
	return New(coinfolio.NewConverter(source, coinfolio.NewPriceCache()), "EUR")
}

func eurTrade(typ coinfolio.TradeType, amount, rate float64, at time.Time) coinfolio.Trade {
	return coinfolio.Trade{
		Timestamp: at,
		Pair:      coinfolio.Pair{Base: coinfolio.NewAsset("BTC"), Quote: coinfolio.NewAsset("EUR")},
		Type:      typ,
		Amount:    coinfolio.Q(amount),
		Rate:      coinfolio.Q(rate),
	}
}

var (
	start2021 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end2021   = time.Date(2021, 12, 31, 23, 59, 59, 0, time.UTC)
)

func TestProcessHistoryFIFO(t *testing.T) {
	history := coinfolio.History{Trades: []coinfolio.Trade{
		eurTrade(coinfolio.Buy, 1, 1000, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		eurTrade(coinfolio.Buy, 1, 2000, time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)),
		eurTrade(coinfolio.Sell, 1.5, 3000, time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)),
	}}

	report, err := newAccountant(nil).ProcessHistory(context.Background(), start2021, end2021, history)
	if err != nil {
		t.Fatalf("ProcessHistory() error: %v", err)
	}

	// proceeds 4500, FIFO basis 1000 + half of 2000
	if got := report.Overview.TotalProfitLoss; !got.Equal(coinfolio.M(2500, "EUR")) {
		t.Errorf("TotalProfitLoss = %s, want 2500 EUR", got)
	}
	// the 2020 lot was held over a year: only the young lot's share is taxable
	if got := report.Overview.TotalTaxableProfitLoss; !got.Equal(coinfolio.M(500, "EUR")) {
		t.Errorf("TotalTaxableProfitLoss = %s, want 500 EUR", got)
	}

	detail, ok := report.Details[coinfolio.NewAsset("BTC")]
	if !ok {
		t.Fatal("no BTC detail for the remaining position")
	}
	if !detail.Allowance.IsZero() {
		t.Errorf("Allowance = %s, want 0 (remaining lot is younger than a year)", detail.Allowance)
	}
	if !detail.AverageBuyPrice.Equal(coinfolio.M(2000, "EUR")) {
		t.Errorf("AverageBuyPrice = %s, want 2000 EUR", detail.AverageBuyPrice)
	}
}

func TestAllowanceAfterHoldingPeriod(t *testing.T) {
	history := coinfolio.History{Trades: []coinfolio.Trade{
		eurTrade(coinfolio.Buy, 2, 1000, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)),
		eurTrade(coinfolio.Buy, 1, 1600, time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC)),
	}}

	report, err := newAccountant(nil).ProcessHistory(context.Background(), start2021, end2021, history)
	if err != nil {
		t.Fatal(err)
	}
	detail := report.Details[coinfolio.NewAsset("BTC")]
	// only the 2020 lot matured by end of 2021
	if !detail.Allowance.Equal(coinfolio.Q(2)) {
		t.Errorf("Allowance = %s, want 2", detail.Allowance)
	}
	// (2*1000 + 1*1600) / 3
	if !detail.AverageBuyPrice.Equal(coinfolio.M(1200, "EUR")) {
		t.Errorf("AverageBuyPrice = %s, want 1200 EUR", detail.AverageBuyPrice)
	}
}

func TestSellOutsideWindowStillConsumesLots(t *testing.T) {
	history := coinfolio.History{Trades: []coinfolio.Trade{
		eurTrade(coinfolio.Buy, 1, 1000, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)),
		eurTrade(coinfolio.Sell, 1, 2000, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)),
	}}

	report, err := newAccountant(nil).ProcessHistory(context.Background(), start2021, end2021, history)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Overview.TotalProfitLoss.IsZero() {
		t.Errorf("TotalProfitLoss = %s, want 0 for a pre-window disposal", report.Overview.TotalProfitLoss)
	}
	if _, ok := report.Details[coinfolio.NewAsset("BTC")]; ok {
		t.Error("closed position still reported in Details")
	}
}

func TestFeeInQuoteAdjustsBothLegs(t *testing.T) {
	fee := func(trade coinfolio.Trade) coinfolio.Trade {
		trade.Fee = coinfolio.Q(10)
		trade.FeeAsset = coinfolio.NewAsset("EUR")
		return trade
	}
	history := coinfolio.History{Trades: []coinfolio.Trade{
		fee(eurTrade(coinfolio.Buy, 1, 1000, time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC))),
		fee(eurTrade(coinfolio.Sell, 1, 2000, time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC))),
	}}

	report, err := newAccountant(nil).ProcessHistory(context.Background(), start2021, end2021, history)
	if err != nil {
		t.Fatal(err)
	}
	// basis 1010, proceeds 1990
	if got := report.Overview.TotalProfitLoss; !got.Equal(coinfolio.M(980, "EUR")) {
		t.Errorf("TotalProfitLoss = %s, want 980 EUR", got)
	}
	if got := report.Overview.TotalTaxableProfitLoss; !got.Equal(coinfolio.M(980, "EUR")) {
		t.Errorf("TotalTaxableProfitLoss = %s, want 980 EUR (held under a year)", got)
	}
}

func TestMarginAndLoansAlwaysTaxable(t *testing.T) {
	history := coinfolio.History{
		MarginTrades: []coinfolio.MarginTrade{{
			Timestamp:  time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
			Pair:       coinfolio.Pair{Base: coinfolio.NewAsset("BTC"), Quote: coinfolio.NewAsset("EUR")},
			ProfitLoss: coinfolio.Q(100),
		}},
		Loans: []coinfolio.Loan{{
			Open:   time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			Close:  time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC),
			Asset:  coinfolio.NewAsset("EUR"),
			Earned: coinfolio.Q(5),
		}},
	}

	report, err := newAccountant(nil).ProcessHistory(context.Background(), start2021, end2021, history)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Overview.TotalProfitLoss; !got.Equal(coinfolio.M(105, "EUR")) {
		t.Errorf("TotalProfitLoss = %s, want 105 EUR", got)
	}
	if got := report.Overview.TotalTaxableProfitLoss; !got.Equal(coinfolio.M(105, "EUR")) {
		t.Errorf("TotalTaxableProfitLoss = %s, want 105 EUR regardless of holding period", got)
	}
}

func TestQuoteCurrencyConversion(t *testing.T) {
	// trades quoted in USD, reporting in EUR at a fixed 0.8 rate
	accountant := newAccountant(map[string]decimal.Decimal{"USD/EUR": decimal.NewFromFloat(0.8)})
	usd := func(typ coinfolio.TradeType, amount, rate float64, at time.Time) coinfolio.Trade {
		trade := eurTrade(typ, amount, rate, at)
		trade.Pair.Quote = coinfolio.NewAsset("USD")
		return trade
	}
	history := coinfolio.History{Trades: []coinfolio.Trade{
		usd(coinfolio.Buy, 1, 1000, time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)),
		usd(coinfolio.Sell, 1, 2000, time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)),
	}}

	report, err := accountant.ProcessHistory(context.Background(), start2021, end2021, history)
	if err != nil {
		t.Fatal(err)
	}
	// (2000 - 1000) USD * 0.8
	if got := report.Overview.TotalProfitLoss; !got.Equal(coinfolio.M(800, "EUR")) {
		t.Errorf("TotalProfitLoss = %s, want 800 EUR", got)
	}
}

func TestAllowanceNeverMaturesAgainstFutureEnd(t *testing.T) {
	accountant := newAccountant(nil)
	now := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	accountant.now = func() time.Time { return now }

	history := coinfolio.History{Trades: []coinfolio.Trade{
		eurTrade(coinfolio.Buy, 1, 1000, now.AddDate(-2, 0, 0)),
		eurTrade(coinfolio.Buy, 1, 2000, now.Add(-24*time.Hour)),
	}}

	// a whole-history run hands in a far-future window end; that must not
	// count as holding time
	end := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	report, err := accountant.ProcessHistory(context.Background(), time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), end, history)
	if err != nil {
		t.Fatal(err)
	}
	detail := report.Details[coinfolio.NewAsset("BTC")]
	if !detail.Allowance.Equal(coinfolio.Q(1)) {
		t.Errorf("Allowance = %s, want 1 (only the two-year-old lot matured)", detail.Allowance)
	}
}
