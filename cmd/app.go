// Package cmd implements the CLI application to manage a multi-source
// crypto portfolio.
package cmd

import (
	"flag"
	"fmt"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/blockstream"
	"github.com/etnz/coinfolio/cryptocompare"
	"github.com/etnz/coinfolio/etherscan"
	"github.com/etnz/coinfolio/httputil"
	"github.com/etnz/coinfolio/kraken"
	"github.com/google/subcommands"
)

// Commands are the subcommands a main package registers.
var Commands = []subcommands.Command{
	&initCmd{},
	&balancesCmd{},
	&fetchCmd{},
	&reportCmd{},
	&runCmd{},
	&allowancesCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "coinfolio.yaml", "Path to the configuration document")
var tradesDir = flag.String("trades-dir", "trades", "Directory holding the per-account trade ledgers")
var cacheDir = flag.String("cache-dir", "cache", "Directory holding the HTTP response cache")
var workers = flag.Int("workers", 4, "Max concurrent account fetches")
var accountTimeout = flag.Duration("account-timeout", 30*time.Second, "Per-account fetch budget")

// whole-history bounds for commands that do not take a window, wide enough
// for any exchange history.
var (
	epochStart = time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	epochEnd   = time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
)

// env holds the process-scoped collaborators, constructed once per run and
// passed down explicitly so cache lifetime stays visible.
type env struct {
	cfg       *coinfolio.Config
	store     *coinfolio.LedgerStore
	converter *coinfolio.Converter
	deps      coinfolio.Deps
}

// newEnv loads the configuration and wires the external collaborators.
func newEnv() (*env, error) {
	cfg, err := coinfolio.LoadFile(*configFile)
	if err != nil {
		return nil, err
	}
	settings := cfg.Settings()

	client := httputil.NewCachedClient(*cacheDir)
	converter := coinfolio.NewConverter(
		cryptocompare.New(client, settings.CryptocompareAPIKey),
		coinfolio.NewPriceCache(),
	)

	deps := coinfolio.Deps{
		Ethereum: etherscan.New(client, settings.EtherscanAPIKey),
		Bitcoin:  blockstream.New(client),
		NewExchange: func(account coinfolio.Account) (coinfolio.Exchange, error) {
			switch account.Exchange {
			case "kraken":
				return kraken.New(client, account.APIKey, account.Secret), nil
			default:
				return nil, fmt.Errorf("unknown exchange: %s", account.Exchange)
			}
		},
	}

	return &env{
		cfg:       cfg,
		store:     coinfolio.NewLedgerStore(*tradesDir),
		converter: converter,
		deps:      deps,
	}, nil
}

func (e *env) collectOptions() coinfolio.CollectOptions {
	return coinfolio.CollectOptions{Workers: *workers, Timeout: *accountTimeout}
}

// sources builds a Source per account, skipping accounts no adapter can
// serve (e.g. an unknown exchange) with a warning.
func (e *env) sources(accounts []coinfolio.Account) (sources []coinfolio.Source, skipped []coinfolio.Skipped) {
	for _, account := range accounts {
		source, err := coinfolio.NewSource(account, e.deps)
		if err != nil {
			skipped = append(skipped, coinfolio.Skipped{Account: account.Name, Reason: err.Error()})
			continue
		}
		sources = append(sources, source)
	}
	return sources, skipped
}

func (e *env) currency() string { return e.cfg.Settings().MainCurrency }
