package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/accounting"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type allowancesCmd struct{}

func (*allowancesCmd) Name() string { return "allowances" }
func (*allowancesCmd) Synopsis() string {
	return "shows the amount of each asset that could be sold tax-free"
}
func (*allowancesCmd) Usage() string {
	return `cfo allowances

  Replays the whole locally known trade history through the tax
  accounting engine and prints, per asset, the quantity held long enough
  to be disposed of without taxable gain.
`
}

func (*allowancesCmd) SetFlags(*flag.FlagSet) {}

func (c *allowancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var trades []coinfolio.Trade
	for _, account := range e.cfg.Accounts() {
		local, err := coinfolio.LocalTrades(e.store, account)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading trades for %s: %v\n", account.Name, err)
			return subcommands.ExitFailure
		}
		trades = append(trades, local...)
	}
	log.Printf("collected %d trades from %d account(s)", len(trades), len(e.cfg.Accounts()))

	accountant := accounting.New(e.converter, e.currency())
	report, err := accountant.ProcessHistory(ctx, epochStart, epochEnd, coinfolio.History{Trades: trades})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.AllowancesMarkdown(report))
	return subcommands.ExitSuccess
}
