package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/accounting"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type runCmd struct {
	keyword string
}

func (*runCmd) Name() string { return "run" }
func (*runCmd) Synopsis() string {
	return "generates every configured report and prints an overview table"
}
func (*runCmd) Usage() string {
	return `cfo run [-k <keyword>]

  Runs every report definition from the configuration whose name contains
  the keyword. A failing report is reported in its row; the other reports
  still run.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.keyword, "k", "", "Only reports whose name contains this keyword")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	runner := coinfolio.NewRunner(e.store, accounting.New(e.converter, e.currency()))

	var rows []renderer.RunRow
	for _, rep := range e.cfg.MatchingReports(c.keyword) {
		result, err := runner.Run(ctx, rep, e.cfg.Accounts())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			rows = append(rows, renderer.RunRow{Report: rep.Name, Failed: err.Error()})
			continue
		}
		rows = append(rows, renderer.RunRow{
			Report:     rep.Name,
			ProfitLoss: result.Overview.TotalProfitLoss.SignedString(),
			TaxablePL:  result.Overview.TotalTaxableProfitLoss.SignedString(),
		})
	}
	if len(rows) == 0 {
		fmt.Println("No matching report definition.")
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RunMarkdown(rows))
	return subcommands.ExitSuccess
}
