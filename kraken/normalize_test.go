package kraken

import "testing"

func TestNormalizeAsset(t *testing.T) {
	testCases := []struct {
		code string
		want string
	}{
		{code: "XXBT", want: "BTC"},
		{code: "XBT", want: "BTC"},
		{code: "XETH", want: "ETH"},
		{code: "ZEUR", want: "EUR"},
		{code: "ZUSD", want: "USD"},
		{code: "ADA", want: "ADA"},
		{code: "ETH2.S", want: "ETH2"},
		{code: "DOT.S", want: "DOT"},
		{code: "XTZ", want: "XTZ"}, // X-prefixed but only 3 chars, not a kraken prefix
		{code: "USDT", want: "USDT"},
	}
	for _, tc := range testCases {
		if got := normalizeAsset(tc.code); got.ID != tc.want {
			t.Errorf("normalizeAsset(%q) = %s, want %s", tc.code, got.ID, tc.want)
		}
	}
}

func TestNormalizePair(t *testing.T) {
	testCases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "XXBTZEUR", want: "BTC/EUR"},
		{name: "XETHZUSD", want: "ETH/USD"},
		{name: "ADAEUR", want: "ADA/EUR"},
		{name: "DOTUSDT", want: "DOT/USDT"},
		{name: "XBT/EUR", want: "BTC/EUR"},
		{name: "EUR", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tc := range testCases {
		pair, err := normalizePair(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("normalizePair(%q) accepted, want error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizePair(%q) error: %v", tc.name, err)
			continue
		}
		if got := pair.String(); got != tc.want {
			t.Errorf("normalizePair(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}
