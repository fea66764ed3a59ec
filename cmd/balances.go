package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type balancesCmd struct {
	keyword string
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "shows balances across all accounts" }
func (*balancesCmd) Usage() string {
	return `cfo balances [-k <keyword>]

  Queries every configured account (exchange, blockchain address or file)
  for its current balances, values them in the reporting currency, and
  prints one aggregated table sorted by value. Accounts whose name does
  not contain the keyword are skipped; an unreachable account is skipped
  with a warning, never aborting the table.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.keyword, "k", "", "Only accounts whose name contains this keyword")
}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	sources, skipped := e.sources(e.cfg.MatchingAccounts(c.keyword))
	set := coinfolio.CollectBalances(ctx, sources, e.collectOptions())
	set.Skipped = append(set.Skipped, skipped...)

	aggregator := coinfolio.NewAggregator(e.converter)
	agg, err := aggregator.Aggregate(ctx, set.Snapshots, e.currency())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error aggregating balances: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.BalancesMarkdown(agg))
	for _, s := range set.Skipped {
		fmt.Fprintf(os.Stderr, "Warning: skipped %s: %s\n", s.Account, s.Reason)
	}
	return subcommands.ExitSuccess
}
