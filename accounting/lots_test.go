package accounting

import (
	"testing"
	"time"

	"github.com/etnz/coinfolio"
)

func TestLotsTake(t *testing.T) {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.AddDate(0, 6, 0)
	open := lots{
		{Time: t0, Quantity: coinfolio.Q(1), Cost: coinfolio.M(1000, "EUR")},
		{Time: t1, Quantity: coinfolio.Q(2), Cost: coinfolio.M(4000, "EUR")},
	}

	matched, remaining := open.take(coinfolio.Q(1.5))

	if len(matched) != 2 {
		t.Fatalf("matched %d lots, want 2", len(matched))
	}
	// the oldest lot goes first and whole
	if !matched[0].Time.Equal(t0) || !matched[0].Quantity.Equal(coinfolio.Q(1)) {
		t.Errorf("matched[0] = %+v, want the full first lot", matched[0])
	}
	// the second lot splits, carrying a proportional cost
	if !matched[1].Quantity.Equal(coinfolio.Q(0.5)) {
		t.Errorf("matched[1] quantity = %s, want 0.5", matched[1].Quantity)
	}
	if !matched[1].Cost.Equal(coinfolio.M(1000, "EUR")) {
		t.Errorf("matched[1] cost = %s, want 1000 EUR (a quarter of the lot)", matched[1].Cost)
	}

	if len(remaining) != 1 {
		t.Fatalf("remaining %d lots, want 1", len(remaining))
	}
	if !remaining[0].Quantity.Equal(coinfolio.Q(1.5)) || !remaining[0].Cost.Equal(coinfolio.M(3000, "EUR")) {
		t.Errorf("remaining = %+v, want 1.5 at 3000 EUR", remaining[0])
	}
}

func TestLotsTakeShortfall(t *testing.T) {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	open := lots{{Time: t0, Quantity: coinfolio.Q(1), Cost: coinfolio.M(1000, "EUR")}}

	matched, remaining := open.take(coinfolio.Q(3))
	if got := matched.quantity(); !got.Equal(coinfolio.Q(1)) {
		t.Errorf("matched quantity = %s, want the 1 that was available", got)
	}
	if len(remaining) != 0 {
		t.Errorf("remaining = %+v, want none", remaining)
	}
}

func TestLotsTakeZero(t *testing.T) {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	open := lots{{Time: t0, Quantity: coinfolio.Q(1), Cost: coinfolio.M(1000, "EUR")}}

	matched, remaining := open.take(coinfolio.Q(0))
	if len(matched) != 0 {
		t.Errorf("matched = %+v, want none", matched)
	}
	if len(remaining) != 1 {
		t.Errorf("remaining = %+v, want the untouched lot", remaining)
	}
}
