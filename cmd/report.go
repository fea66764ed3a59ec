package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/accounting"
	"github.com/etnz/coinfolio/date"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	name string
	from string
	to   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "runs an ad-hoc report on the local trade data" }
func (*reportCmd) Usage() string {
	return `cfo report -n <name> -f <from> -t <to>

  Gathers the locally known trades of every account within [from, to],
  hands them to the tax accounting engine and prints the resulting
  overview and per-asset details. Dates are ISO-8601 (2021-01-01).
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Report name (required)")
	f.StringVar(&c.from, "f", "", "Window start date (required)")
	f.StringVar(&c.to, "t", "", "Window end date (required)")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.from == "" || c.to == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	from, err := date.Parse(c.from)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	to, err := date.Parse(c.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	e, err := newEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	runner := coinfolio.NewRunner(e.store, accounting.New(e.converter, e.currency()))
	rep := coinfolio.ReportDefinition{Name: c.name, From: from, To: to}
	result, err := runner.Run(ctx, rep, e.cfg.Accounts())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ReportMarkdown(result))
	return subcommands.ExitSuccess
}
