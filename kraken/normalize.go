package kraken

import (
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
)

// kraken prefixes crypto assets with X and fiat with Z, and still calls
// bitcoin XBT.
var assetCodes = map[string]string{
	"XXBT": "BTC",
	"XBT":  "BTC",
	"XETH": "ETH",
	"XXRP": "XRP",
	"XLTC": "LTC",
	"XXLM": "XLM",
	"XXMR": "XMR",
	"XZEC": "ZEC",
	"ZEUR": "EUR",
	"ZUSD": "USD",
	"ZGBP": "GBP",
	"ZJPY": "JPY",
	"ZCAD": "CAD",
}

// normalizeAsset maps a kraken asset code to its common identifier.
// Staking suffixes like "ETH2.S" fold into the plain asset.
func normalizeAsset(code string) coinfolio.Asset {
	code, _, _ = strings.Cut(code, ".")
	if common, ok := assetCodes[code]; ok {
		return coinfolio.NewAsset(common)
	}
	if len(code) == 4 && (code[0] == 'X' || code[0] == 'Z') {
		return coinfolio.NewAsset(code[1:])
	}
	return coinfolio.NewAsset(code)
}

// quoteCodes are the quote suffixes kraken concatenates into pair names,
// longest first so "XXBTZEUR" splits before "XBTEUR" would.
var quoteCodes = []string{
	"ZEUR", "ZUSD", "ZGBP", "ZJPY", "ZCAD", "XXBT", "XETH",
	"EUR", "USD", "GBP", "JPY", "CAD", "XBT", "ETH", "BTC", "USDT", "USDC", "DAI",
}

// normalizePair splits a concatenated kraken pair name such as "XXBTZEUR"
// or "ADAEUR" into a base/quote pair with common identifiers.
func normalizePair(name string) (coinfolio.Pair, error) {
	if base, quote, ok := strings.Cut(name, "/"); ok {
		// ws-style pair names are already separated
		return coinfolio.Pair{Base: normalizeAsset(base), Quote: normalizeAsset(quote)}, nil
	}
	for _, code := range quoteCodes {
		if strings.HasSuffix(name, code) && len(name) > len(code) {
			return coinfolio.Pair{
				Base:  normalizeAsset(strings.TrimSuffix(name, code)),
				Quote: normalizeAsset(code),
			}, nil
		}
	}
	return coinfolio.Pair{}, fmt.Errorf("kraken: cannot split pair name %q", name)
}
