package coinfolio

import "fmt"

// AccountKind discriminates the four account variants.
type AccountKind int

const (
	KindExchange AccountKind = iota
	KindEthereum
	KindBitcoin
	KindFile
)

func (k AccountKind) String() string {
	switch k {
	case KindExchange:
		return "exchange"
	case KindEthereum:
		return "ethereum"
	case KindBitcoin:
		return "bitcoin"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Account is a configured source of holdings and trades. Exactly one
// variant is populated, selected by Kind.
type Account struct {
	Name string
	Kind AccountKind

	// KindExchange
	Exchange   string // exchange identifier, e.g. "kraken"
	APIKey     string
	Secret     string
	Passphrase string

	// KindEthereum / KindBitcoin
	Address string

	// KindFile
	File string
}

// accountDoc is the declarative YAML shape of one account entry. The
// variant is recognized by which of the exchange/ethereum/bitcoin/file
// keys is present.
type accountDoc struct {
	Name       string `yaml:"name"`
	Exchange   string `yaml:"exchange"`
	APIKey     string `yaml:"api_key"`
	Secret     string `yaml:"secret"`
	Passphrase string `yaml:"passphrase"`
	Ethereum   string `yaml:"ethereum"`
	Bitcoin    string `yaml:"bitcoin"`
	File       string `yaml:"file"`
}

// resolve validates the tagged union: exactly one variant key must be set.
func (d accountDoc) resolve() (Account, error) {
	if d.Name == "" {
		return Account{}, fmt.Errorf("account has no name")
	}
	account := Account{Name: d.Name}
	var tags int
	if d.Exchange != "" {
		tags++
		account.Kind = KindExchange
		account.Exchange = d.Exchange
		account.APIKey = d.APIKey
		account.Secret = d.Secret
		account.Passphrase = d.Passphrase
	}
	if d.Ethereum != "" {
		tags++
		account.Kind = KindEthereum
		account.Address = d.Ethereum
	}
	if d.Bitcoin != "" {
		tags++
		account.Kind = KindBitcoin
		account.Address = d.Bitcoin
	}
	if d.File != "" {
		tags++
		account.Kind = KindFile
		account.File = d.File
	}
	switch tags {
	case 0:
		return Account{}, fmt.Errorf("account %q matches none of exchange/ethereum/bitcoin/file", d.Name)
	case 1:
		return account, nil
	default:
		return Account{}, fmt.Errorf("account %q matches more than one variant", d.Name)
	}
}
