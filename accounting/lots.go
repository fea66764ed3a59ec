package accounting

import (
	"time"

	"github.com/etnz/coinfolio"
)

// lot represents a single acquisition of an asset, used for cost basis
// calculations.
type lot struct {
	Time     time.Time
	Quantity coinfolio.Quantity
	Cost     coinfolio.Money // total acquisition cost of the lot, in the reporting currency
}

type lots []lot

// take removes quantityToSell from the oldest lots first (FIFO) and
// returns the matched portions, each keeping its acquisition time and a
// proportional share of its lot's cost, together with the remaining lots.
// When the open lots cannot cover the full quantity, the matched slice
// covers what they can; the caller decides how to treat the shortfall.
func (l lots) take(quantityToSell coinfolio.Quantity) (matched lots, remaining lots) {
	for _, currentLot := range l {
		if quantityToSell.IsZero() {
			remaining = append(remaining, currentLot)
			continue
		}

		if currentLot.Quantity.GreaterThan(quantityToSell) {
			// Partial sale from this lot
			costOfSoldPortion := currentLot.Cost.Mul(quantityToSell).Div(currentLot.Quantity)
			matched = append(matched, lot{
				Time:     currentLot.Time,
				Quantity: quantityToSell,
				Cost:     costOfSoldPortion,
			})
			remaining = append(remaining, lot{
				Time:     currentLot.Time,
				Quantity: currentLot.Quantity.Sub(quantityToSell),
				Cost:     currentLot.Cost.Sub(costOfSoldPortion),
			})
			quantityToSell = coinfolio.Q(0)
		} else {
			// Full sale of this lot
			matched = append(matched, currentLot)
			quantityToSell = quantityToSell.Sub(currentLot.Quantity)
		}
	}
	return matched, remaining
}

// quantity sums the lots' quantities.
func (l lots) quantity() coinfolio.Quantity {
	var total coinfolio.Quantity
	for _, x := range l {
		total = total.Add(x.Quantity)
	}
	return total
}

// cost sums the lots' costs.
func (l lots) cost() coinfolio.Money {
	var total coinfolio.Money
	for _, x := range l {
		total = total.Add(x.Cost)
	}
	return total
}
