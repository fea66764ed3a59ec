package coinfolio

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/coinfolio/date"
)

// ReportDefinition is one configured report over a time window.
type ReportDefinition struct {
	Name     string
	Title    string
	Template string
	From     date.Date
	To       date.Date
}

// Validate rejects a definition whose window is inverted, before any
// account is queried.
func (r ReportDefinition) Validate() error {
	if r.Name == "" {
		return &ConfigError{Reason: "report has no name"}
	}
	if r.From.After(r.To) {
		return &ConfigError{Reason: fmt.Sprintf("report %q: from %s is after to %s", r.Name, r.From, r.To)}
	}
	return nil
}

// History is the input stream handed to the accounting collaborator.
// Only trades are populated by this core today; the other series exist so
// the collaborator interface covers the full accounting surface.
type History struct {
	Trades          []Trade
	MarginTrades    []MarginTrade
	Loans           []Loan
	AssetMovements  []AssetMovement
	EthTransactions []EthTransaction
}

// MarginTrade is a closed margin position's realized result.
type MarginTrade struct {
	Timestamp  time.Time
	Pair       Pair
	ProfitLoss Quantity // in the quote asset
}

// Loan is a closed lending position.
type Loan struct {
	Open   time.Time
	Close  time.Time
	Asset  Asset
	Earned Quantity
}

// AssetMovement is a deposit or withdrawal between accounts.
type AssetMovement struct {
	Timestamp time.Time
	Asset     Asset
	Amount    Quantity
	Category  string // "deposit" or "withdrawal"
}

// EthTransaction is an on-chain ethereum transaction relevant for fees.
type EthTransaction struct {
	Timestamp time.Time
	Hash      string
	GasUsed   Quantity
}

// TaxOverview is the collaborator's profit/loss summary.
type TaxOverview struct {
	TotalProfitLoss        Money
	TotalTaxableProfitLoss Money
}

// AllowanceDetail is the collaborator's per-asset output: the quantity
// disposable without taxable gain, and the average buy price of the
// remaining position.
type AllowanceDetail struct {
	Allowance       Quantity
	AverageBuyPrice Money
}

// Accountant is the external tax-lot accounting collaborator, consumed as
// an opaque processor of a trade stream. Implemented by the accounting
// package.
type Accountant interface {
	ProcessHistory(ctx context.Context, start, end time.Time, history History) (*TaxReport, error)
}

// TaxReport is the collaborator's result.
type TaxReport struct {
	Overview TaxOverview
	Details  map[Asset]AllowanceDetail
}

// ReportResult wraps one report's outcome.
type ReportResult struct {
	Definition ReportDefinition
	Overview   TaxOverview
	Details    map[Asset]AllowanceDetail
}

// Runner orchestrates a time-bounded aggregation of trades across all
// accounts and delegates to the accounting collaborator.
type Runner struct {
	store      *LedgerStore
	accountant Accountant
}

// NewRunner returns a Runner over the given store and collaborator.
func NewRunner(store *LedgerStore, accountant Accountant) *Runner {
	return &Runner{store: store, accountant: accountant}
}

// Run gathers every account's locally known trades within the report
// window, sorts them chronologically, and hands the merged stream to the
// accounting collaborator. Accounting is deterministic so a failure is not
// retried; it surfaces as a ReportError carrying the original cause.
func (r *Runner) Run(ctx context.Context, rep ReportDefinition, accounts []Account) (*ReportResult, error) {
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	start, end := rep.From.Time(), rep.To.EndOfDay()

	var trades []Trade
	for _, account := range accounts {
		local, err := LocalTrades(r.store, account)
		if err != nil {
			return nil, &ReportError{Report: rep.Name, Cause: err}
		}
		for _, t := range local {
			if t.Timestamp.Before(start) || t.Timestamp.After(end) {
				continue
			}
			trades = append(trades, t)
		}
	}
	slices.SortStableFunc(trades, func(a, b Trade) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	report, err := r.accountant.ProcessHistory(ctx, start, end, History{Trades: trades})
	if err != nil {
		return nil, &ReportError{Report: rep.Name, Cause: err}
	}
	return &ReportResult{Definition: rep, Overview: report.Overview, Details: report.Details}, nil
}
