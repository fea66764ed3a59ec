package renderer

import (
	"slices"
	"strings"

	"github.com/etnz/coinfolio"
)

// AllowanceRow is one asset line of an allowance table.
type AllowanceRow struct {
	Asset           string
	Allowance       string
	AverageBuyPrice string
}

// ReportView is the data handed to the report template.
type ReportView struct {
	Title      string
	Name       string
	From       string
	To         string
	ProfitLoss string
	TaxablePL  string
	Rows       []AllowanceRow
}

// allowanceRows flattens the per-asset details, sorted by asset for
// reproducible output.
func allowanceRows(details map[coinfolio.Asset]coinfolio.AllowanceDetail) []AllowanceRow {
	assets := make([]coinfolio.Asset, 0, len(details))
	for asset := range details {
		assets = append(assets, asset)
	}
	slices.SortFunc(assets, func(a, b coinfolio.Asset) int { return strings.Compare(a.ID, b.ID) })

	rows := make([]AllowanceRow, 0, len(assets))
	for _, asset := range assets {
		d := details[asset]
		rows = append(rows, AllowanceRow{
			Asset:           asset.ID,
			Allowance:       d.Allowance.String(),
			AverageBuyPrice: d.AverageBuyPrice.String(),
		})
	}
	return rows
}

// ReportMarkdown renders one report result: the overview followed by the
// per-asset detail table.
func ReportMarkdown(result *coinfolio.ReportResult) string {
	rep := result.Definition
	title := rep.Title
	if title == "" {
		title = rep.Name
	}
	view := ReportView{
		Title:      title,
		Name:       rep.Name,
		From:       rep.From.String(),
		To:         rep.To.String(),
		ProfitLoss: result.Overview.TotalProfitLoss.SignedString(),
		TaxablePL:  result.Overview.TotalTaxableProfitLoss.SignedString(),
		Rows:       allowanceRows(result.Details),
	}
	return renderTemplate("report", "report.md", nil, view)
}

// AllowancesMarkdown renders the whole-history allowance table: the amount
// of each asset that can be disposed of tax-free.
func AllowancesMarkdown(report *coinfolio.TaxReport) string {
	view := struct{ Rows []AllowanceRow }{Rows: allowanceRows(report.Details)}
	return renderTemplate("allowances", "allowances.md", nil, view)
}

// RunRow is one line of the batch run overview.
type RunRow struct {
	Report     string
	ProfitLoss string
	TaxablePL  string
	Failed     string // failure reason, empty on success
}

// RunMarkdown renders the batch run overview, one row per report.
func RunMarkdown(rows []RunRow) string {
	view := struct{ Rows []RunRow }{Rows: rows}
	return renderTemplate("run", "run.md", nil, view)
}
