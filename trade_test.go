package coinfolio

import (
	"testing"
	"time"
)

func TestParsePair(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "BTC/EUR", want: "BTC/EUR"},
		{in: "btc/eur", want: "BTC/EUR"},
		{in: "BTCEUR", wantErr: true},
		{in: "/EUR", wantErr: true},
		{in: "BTC/", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		pair, err := ParsePair(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePair(%q) accepted, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePair(%q) error: %v", tc.in, err)
			continue
		}
		if pair.String() != tc.want {
			t.Errorf("ParsePair(%q) = %s, want %s", tc.in, pair, tc.want)
		}
	}
}

func TestTradeKeyIdentity(t *testing.T) {
	at := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	a := mkTrade("kraken1", "BTC/EUR", Buy, "1.0", "30000", at)
	b := mkTrade("kraken1", "BTC/EUR", Buy, "1.0", "30000", at)
	if a.Key() != b.Key() {
		t.Errorf("identical trades have distinct keys: %v vs %v", a.Key(), b.Key())
	}
	c := mkTrade("kraken2", "BTC/EUR", Buy, "1.0", "30000", at)
	if a.Key() == c.Key() {
		t.Error("trades of different accounts must not collide")
	}
	d := mkTrade("kraken1", "BTC/EUR", Buy, "1.0", "30000", at.Add(time.Second))
	if a.Key() == d.Key() {
		t.Error("trades a second apart must not collide")
	}
}

func TestTradeCost(t *testing.T) {
	at := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
	trade := mkTrade("kraken1", "BTC/EUR", Buy, "0.5", "30000", at)
	if got := trade.Cost(); !got.Equal(Q(15000)) {
		t.Errorf("Cost() = %s, want 15000", got)
	}
}
