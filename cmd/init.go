package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
)

const initialConfig = `# coinfolio configuration
settings:
  main_currency: EUR
  # etherscan_api_key: ...
  # cryptocompare_api_key: ...

accounts: []
# - name: kraken1
#   exchange: kraken
#   api_key: ...
#   secret: ...
# - name: wallet1
#   ethereum: "0x..."
# - name: cold1
#   bitcoin: "bc1..."
# - name: manual
#   file: accounts/manual.yaml

reports: []
# - name: y2024
#   from: 2024-01-01
#   to: 2024-12-31
`

type initCmd struct {
	directory string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "initializes a new coinfolio directory" }
func (*initCmd) Usage() string {
	return `cfo init [-d <directory>]

  Writes a starter configuration document and creates the trades, reports
  and cache directories. Refuses to touch a directory that already has a
  configuration.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.directory, "d", ".", "Directory to initialize")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	target := filepath.Join(c.directory, "coinfolio.yaml")
	if _, err := os.Stat(target); err == nil {
		fmt.Fprintf(os.Stderr, "Already initialized (%s exists), aborting.\n", target)
		return subcommands.ExitFailure
	}

	for _, dir := range []string{"trades", "reports", "cache"} {
		if err := os.MkdirAll(filepath.Join(c.directory, dir), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
			return subcommands.ExitFailure
		}
	}
	if err := os.WriteFile(target, []byte(initialConfig), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", target, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully initialized in %s.\n", c.directory)
	return subcommands.ExitSuccess
}
