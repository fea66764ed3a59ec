package coinfolio

import (
	"fmt"
	"strings"
	"time"
)

// TradeType is the side of a trade.
type TradeType int

const (
	Buy TradeType = iota
	Sell
)

func (t TradeType) String() string {
	switch t {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseTradeType parses a string into a TradeType.
func ParseTradeType(s string) (TradeType, error) {
	switch strings.ToLower(s) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown trade type: %q", s)
	}
}

// Pair is a traded asset pair. Rate and quote-denominated values are
// expressed in the Quote asset.
type Pair struct {
	Base  Asset
	Quote Asset
}

func (p Pair) String() string { return p.Base.ID + "/" + p.Quote.ID }

// ParsePair parses a "BASE/QUOTE" pair string.
func ParsePair(s string) (Pair, error) {
	base, quote, ok := strings.Cut(s, "/")
	if !ok || base == "" || quote == "" {
		return Pair{}, fmt.Errorf("invalid pair: %q", s)
	}
	return Pair{Base: NewAsset(base), Quote: NewAsset(quote)}, nil
}

// Trade is one immutable executed trade. Trades are append-only once
// fetched; Amount is in the base asset, Rate in the quote asset per unit
// of base.
type Trade struct {
	Timestamp time.Time
	Pair      Pair
	Type      TradeType
	Amount    Quantity
	Rate      Quantity
	Fee       Quantity
	FeeAsset  Asset
	Account   string // name of the source account
}

// TradeKey is the identity of a trade for deduplication purposes.
type TradeKey struct {
	Account   string
	Timestamp int64
	Pair      string
	Amount    string
	Rate      string
}

// Key returns the trade's deduplication identity.
func (t Trade) Key() TradeKey {
	return TradeKey{
		Account:   t.Account,
		Timestamp: t.Timestamp.Unix(),
		Pair:      t.Pair.String(),
		Amount:    t.Amount.String(),
		Rate:      t.Rate.String(),
	}
}

// Cost returns the trade's total value in the quote asset (amount * rate).
func (t Trade) Cost() Quantity { return t.Amount.Mul(t.Rate) }

// tradeDoc is the serialized YAML shape of one trade. Amounts are decimal
// strings, timestamps ISO-8601 UTC.
type tradeDoc struct {
	Timestamp string   `yaml:"timestamp"`
	Pair      string   `yaml:"pair"`
	Type      string   `yaml:"type"`
	Amount    Quantity `yaml:"amount"`
	Rate      Quantity `yaml:"rate"`
	Fee       Quantity `yaml:"fee,omitempty"`
	FeeAsset  string   `yaml:"fee_asset,omitempty"`
}

func encodeTrade(t Trade) tradeDoc {
	return tradeDoc{
		Timestamp: t.Timestamp.UTC().Format(time.RFC3339),
		Pair:      t.Pair.String(),
		Type:      t.Type.String(),
		Amount:    t.Amount,
		Rate:      t.Rate,
		Fee:       t.Fee,
		FeeAsset:  t.FeeAsset.ID,
	}
}

func (d tradeDoc) decode(account string) (Trade, error) {
	ts, err := time.Parse(time.RFC3339, d.Timestamp)
	if err != nil {
		// older ledgers stored epoch seconds
		var unix int64
		if _, serr := fmt.Sscanf(d.Timestamp, "%d", &unix); serr != nil {
			return Trade{}, fmt.Errorf("invalid trade timestamp %q: %w", d.Timestamp, err)
		}
		ts = time.Unix(unix, 0).UTC()
	}
	pair, err := ParsePair(d.Pair)
	if err != nil {
		return Trade{}, err
	}
	typ, err := ParseTradeType(d.Type)
	if err != nil {
		return Trade{}, err
	}
	return Trade{
		Timestamp: ts.UTC(),
		Pair:      pair,
		Type:      typ,
		Amount:    d.Amount,
		Rate:      d.Rate,
		Fee:       d.Fee,
		FeeAsset:  NewAsset(d.FeeAsset),
		Account:   account,
	}, nil
}
