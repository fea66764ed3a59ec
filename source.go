package coinfolio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Source produces a balance snapshot and/or a trade-history stream for one
// account, normalized to the Balance/Trade shapes. The four account kinds
// are dispatched once, here, instead of re-branching at every call site.
type Source interface {
	// Account returns the account this source reads from.
	Account() Account
	// Validate is a cheap credential/reachability check. It never returns
	// an error for an invalid key: it reports (false, reason).
	Validate(ctx context.Context) (bool, string)
	// Balances queries the underlying source and converts to the internal
	// balance shape.
	Balances(ctx context.Context) (map[Asset]Balance, error)
	// Trades returns the account's trade history within [from, to].
	// Chain accounts have no retrievable history and return an empty
	// sequence, never an error.
	Trades(ctx context.Context, from, to time.Time) ([]Trade, error)
}

// Exchange is the capability an exchange client provides. Implemented by
// the kraken package; other exchanges plug in behind the same interface.
type Exchange interface {
	// ValidateKey performs an authenticated no-op call.
	ValidateKey(ctx context.Context) error
	// Balances returns the account's asset amounts.
	Balances(ctx context.Context) (map[Asset]Quantity, error)
	// TradeHistory returns executed trades within [from, to].
	TradeHistory(ctx context.Context, from, to time.Time) ([]Trade, error)
}

// ChainBalancer retrieves the native-asset balance of one address.
// Implemented by the etherscan and blockstream packages.
type ChainBalancer interface {
	AddressBalance(ctx context.Context, address string) (Quantity, error)
}

// Deps are the external collaborators a Source may delegate to.
type Deps struct {
	// NewExchange builds the exchange client for an exchange account.
	NewExchange func(Account) (Exchange, error)
	Ethereum    ChainBalancer
	Bitcoin     ChainBalancer
}

// NewSource returns the Source for the given account.
func NewSource(account Account, deps Deps) (Source, error) {
	switch account.Kind {
	case KindExchange:
		if deps.NewExchange == nil {
			return nil, fmt.Errorf("no exchange client factory configured")
		}
		exchange, err := deps.NewExchange(account)
		if err != nil {
			return nil, err
		}
		return &exchangeSource{account: account, exchange: exchange}, nil
	case KindEthereum:
		return &chainSource{account: account, chain: deps.Ethereum, pattern: ethAddress}, nil
	case KindBitcoin:
		return &chainSource{account: account, chain: deps.Bitcoin, pattern: btcAddress}, nil
	case KindFile:
		return &fileSource{account: account}, nil
	default:
		return nil, fmt.Errorf("unknown account kind for %q", account.Name)
	}
}

// exchangeSource adapts an Exchange client. Trades requires a prior
// successful Validate: the caller owns that precondition.
type exchangeSource struct {
	account   Account
	exchange  Exchange
	validated bool
}

func (s *exchangeSource) Account() Account { return s.account }

func (s *exchangeSource) Validate(ctx context.Context) (bool, string) {
	if err := s.exchange.ValidateKey(ctx); err != nil {
		return false, err.Error()
	}
	s.validated = true
	return true, ""
}

func (s *exchangeSource) Balances(ctx context.Context) (map[Asset]Balance, error) {
	amounts, err := s.exchange.Balances(ctx)
	if err != nil {
		return nil, &SourceUnavailable{Account: s.account.Name, Cause: err}
	}
	balances := make(map[Asset]Balance, len(amounts))
	for asset, amount := range amounts {
		balances[asset] = Balance{Asset: asset, Amount: amount}
	}
	return balances, nil
}

func (s *exchangeSource) Trades(ctx context.Context, from, to time.Time) ([]Trade, error) {
	if !s.validated {
		return nil, &SourceUnavailable{Account: s.account.Name, Cause: errors.New("credentials not validated")}
	}
	trades, err := s.exchange.TradeHistory(ctx, from, to)
	if err != nil {
		return nil, &SourceUnavailable{Account: s.account.Name, Cause: err}
	}
	for i := range trades {
		trades[i].Account = s.account.Name
	}
	return trades, nil
}

var (
	ethAddress = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	btcAddress = regexp.MustCompile(`^(bc1[0-9a-z]{20,60}|[13][1-9A-HJ-NP-Za-km-z]{25,34})$`)
)

// chainSource adapts a ChainBalancer for one blockchain address.
type chainSource struct {
	account Account
	chain   ChainBalancer
	pattern *regexp.Regexp
}

func (s *chainSource) Account() Account { return s.account }

func (s *chainSource) Validate(_ context.Context) (bool, string) {
	if !s.pattern.MatchString(s.account.Address) {
		return false, fmt.Sprintf("malformed address %q", s.account.Address)
	}
	return true, ""
}

func (s *chainSource) Balances(ctx context.Context) (map[Asset]Balance, error) {
	if s.chain == nil {
		return nil, &SourceUnavailable{Account: s.account.Name, Cause: errors.New("no chain client configured")}
	}
	amount, err := s.chain.AddressBalance(ctx, s.account.Address)
	if err != nil {
		return nil, &SourceUnavailable{Account: s.account.Name, Cause: err}
	}
	asset := NewAsset("ETH")
	if s.account.Kind == KindBitcoin {
		asset = NewAsset("BTC")
	}
	return map[Asset]Balance{asset: {Asset: asset, Amount: amount}}, nil
}

// Trades is empty for chain accounts: trade history is not retrievable
// on-chain, a known and accepted limitation rather than a failure.
func (s *chainSource) Trades(_ context.Context, _, _ time.Time) ([]Trade, error) {
	return []Trade{}, nil
}

// fileSource reads a user-maintained YAML document with optional
// `balances` and `trades` lists.
type fileSource struct {
	account Account
}

type fileDoc struct {
	Balances []struct {
		Asset  string   `yaml:"asset"`
		Amount Quantity `yaml:"amount"`
	} `yaml:"balances"`
	Trades []tradeDoc `yaml:"trades"`
}

func (s *fileSource) Account() Account { return s.account }

func (s *fileSource) Validate(_ context.Context) (bool, string) {
	if _, err := os.Stat(s.account.File); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func (s *fileSource) read() (*fileDoc, error) {
	content, err := os.ReadFile(s.account.File)
	if err != nil {
		return nil, &SourceUnavailable{Account: s.account.Name, Cause: err}
	}
	var doc fileDoc
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &SourceUnavailable{Account: s.account.Name, Cause: err}
	}
	return &doc, nil
}

// Balances reads amounts verbatim. A document without a `balances` key
// contributes zero rows, not an error.
func (s *fileSource) Balances(_ context.Context) (map[Asset]Balance, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	balances := make(map[Asset]Balance, len(doc.Balances))
	for _, b := range doc.Balances {
		asset := NewAsset(b.Asset)
		balance := balances[asset]
		balance.Asset = asset
		balance.Amount = balance.Amount.Add(b.Amount)
		balances[asset] = balance
	}
	return balances, nil
}

func (s *fileSource) Trades(_ context.Context, from, to time.Time) ([]Trade, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	trades := make([]Trade, 0, len(doc.Trades))
	for _, d := range doc.Trades {
		t, err := d.decode(s.account.Name)
		if err != nil {
			return nil, &SourceUnavailable{Account: s.account.Name, Cause: err}
		}
		if t.Timestamp.Before(from) || t.Timestamp.After(to) {
			continue
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// LocalTrades returns the locally known trades for an account without any
// network call: the persisted ledger for exchange accounts, the document's
// own trades for file accounts, and nothing for chain accounts. A missing
// ledger is an empty history here.
func LocalTrades(store *LedgerStore, account Account) ([]Trade, error) {
	switch account.Kind {
	case KindExchange:
		trades, err := store.Load(account.Name)
		var notFound *LedgerNotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return trades, err
	case KindFile:
		source := &fileSource{account: account}
		doc, err := source.read()
		if err != nil {
			var unavailable *SourceUnavailable
			if errors.As(err, &unavailable) && errors.Is(unavailable.Cause, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		trades := make([]Trade, 0, len(doc.Trades))
		for _, d := range doc.Trades {
			t, err := d.decode(account.Name)
			if err != nil {
				return nil, err
			}
			trades = append(trades, t)
		}
		return trades, nil
	case KindEthereum, KindBitcoin:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown account kind for %q", account.Name)
	}
}
