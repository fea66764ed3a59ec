package coinfolio

import "strings"

// Asset identifies a crypto or fiat asset. Equality is by ID: NewAsset
// normalizes the identifier and derives the display symbol deterministically,
// so two Assets built from the same identifier compare equal and can be used
// directly as map keys during aggregation.
type Asset struct {
	ID     string
	Symbol string
}

// symbols maps asset identifiers to a display symbol when it differs from
// the identifier itself.
var symbols = map[string]string{
	"BTC": "₿",
	"ETH": "Ξ",
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
}

// fiat currencies the converter treats as a reporting-currency basis.
var fiat = map[string]bool{
	"EUR": true, "USD": true, "GBP": true, "JPY": true, "CHF": true, "CAD": true,
}

// NewAsset returns the Asset for the given identifier (e.g. "BTC").
func NewAsset(id string) Asset {
	id = strings.ToUpper(strings.TrimSpace(id))
	symbol, ok := symbols[id]
	if !ok {
		symbol = id
	}
	return Asset{ID: id, Symbol: symbol}
}

// IsFiat reports whether the asset is a fiat currency.
func (a Asset) IsFiat() bool { return fiat[a.ID] }

func (a Asset) String() string { return a.ID }
