package renderer

import "github.com/etnz/coinfolio"

// BalanceRow is one asset line of the balances table.
type BalanceRow struct {
	Rank   int
	Asset  string
	Amount string
	Symbol string
	Value  string
}

// BalancesView is the data handed to the balances template.
type BalancesView struct {
	Currency  string
	Rows      []BalanceRow
	Total     string
	Estimated bool
}

// BalancesMarkdown renders the cross-account aggregation as a markdown
// table, sorted as aggregated (value descending). A row whose value could
// not be fully priced renders with a `~` marker, or `-` when no price was
// available at all, never as a plain zero.
func BalancesMarkdown(agg *coinfolio.Aggregation) string {
	view := BalancesView{Currency: agg.Currency, Estimated: agg.Estimated}
	for _, row := range agg.Rows {
		value := row.Value.String()
		if row.Partial {
			if row.Value.IsZero() {
				value = "-"
			} else {
				value = "~" + value
			}
		}
		view.Rows = append(view.Rows, BalanceRow{
			Rank:   row.Rank,
			Asset:  row.Asset.ID,
			Amount: row.Quantity.String(),
			Symbol: row.Asset.Symbol,
			Value:  value,
		})
	}
	view.Total = agg.Total.String()
	if agg.Estimated {
		view.Total = "~" + view.Total
	}
	return renderTemplate("balances", "balances.md", nil, view)
}
