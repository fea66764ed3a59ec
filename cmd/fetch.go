package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/google/subcommands"
)

type fetchCmd struct {
	keyword string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetches trade history for configured exchange accounts" }
func (*fetchCmd) Usage() string {
	return `cfo fetch [-k <keyword>]

  Fetches the full trade history of every matching exchange account and
  persists it into the per-account ledger under the trades directory.
  Trades already on disk but no longer returned by the exchange are
  preserved. Blockchain accounts hold no fetchable history, and file
  accounts are already local; both are skipped.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.keyword, "k", "", "Only accounts whose name contains this keyword")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var exchanges []coinfolio.Account
	for _, account := range e.cfg.MatchingAccounts(c.keyword) {
		if account.Kind != coinfolio.KindExchange {
			continue
		}
		fmt.Printf("Fetching trades for %s\n", account.Name)
		exchanges = append(exchanges, account)
	}

	sources, skipped := e.sources(exchanges)
	set := coinfolio.CollectTrades(ctx, sources, epochStart, epochEnd, e.collectOptions())
	set.Skipped = append(set.Skipped, skipped...)

	status := subcommands.ExitSuccess
	for name, trades := range set.Trades {
		if err := e.store.Save(name, trades); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving ledger for %s: %v\n", name, err)
			status = subcommands.ExitFailure
		}
	}
	for _, s := range set.Skipped {
		fmt.Fprintf(os.Stderr, "Warning: skipped %s: %s\n", s.Account, s.Reason)
	}
	return status
}
