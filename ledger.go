package coinfolio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LedgerStore persists one trade ledger per account, keyed by account name,
// as YAML files under a single directory. It is the only mutation path for
// historical trades and the source of truth on disk.
type LedgerStore struct {
	dir string
}

// NewLedgerStore returns a store writing ledgers under dir.
func NewLedgerStore(dir string) *LedgerStore { return &LedgerStore{dir: dir} }

func (s *LedgerStore) path(account string) string {
	return filepath.Join(s.dir, account+".yaml")
}

// ledgerDoc is the on-disk shape of one account's ledger.
type ledgerDoc struct {
	Trades []tradeDoc `yaml:"trades"`
}

// Save persists the full trade list for the account, replacing prior
// content atomically (write to a temp file, then rename, so a crash never
// leaves a truncated ledger).
//
// Trades already on disk that are absent from the new list are preserved:
// they are identified by the trade key and appended after the fresh ones.
// Without the merge, a trade visible only in an exchange's older paginated
// history would be lost on every re-fetch.
func (s *LedgerStore) Save(account string, trades []Trade) error {
	prior, err := s.Load(account)
	var notFound *LedgerNotFound
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("cannot read prior ledger for %q: %w", account, err)
	}

	keys := make(map[TradeKey]bool, len(trades))
	merged := make([]Trade, 0, len(trades)+len(prior))
	for _, t := range trades {
		if keys[t.Key()] {
			continue // duplicate within the fetch itself
		}
		keys[t.Key()] = true
		merged = append(merged, t)
	}
	for _, t := range prior {
		if !keys[t.Key()] {
			merged = append(merged, t)
		}
	}

	doc := ledgerDoc{Trades: make([]tradeDoc, 0, len(merged))}
	for _, t := range merged {
		doc.Trades = append(doc.Trades, encodeTrade(t))
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("cannot create ledger directory %q: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, account+"-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create temp ledger for %q: %w", account, err)
	}
	defer os.Remove(tmp.Name())

	enc := yaml.NewEncoder(tmp)
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot encode ledger for %q: %w", account, err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(account))
}

// Load retrieves the persisted trade list for the account, in stored order.
// A missing ledger file is a LedgerNotFound, distinct from an empty ledger.
func (s *LedgerStore) Load(account string) ([]Trade, error) {
	path := s.path(account)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LedgerNotFound{Account: account, Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read ledger %q: %w", path, err)
	}

	var doc ledgerDoc
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse ledger %q: %w", path, err)
	}
	trades := make([]Trade, 0, len(doc.Trades))
	for _, d := range doc.Trades {
		t, err := d.decode(account)
		if err != nil {
			return nil, fmt.Errorf("ledger %q: %w", path, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}
