package coinfolio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/coinfolio/date"
	"gopkg.in/yaml.v3"
)

// DefaultCurrency is the reporting currency used when the settings do not
// name one.
const DefaultCurrency = "EUR"

// Settings are the top-level `settings` of the configuration document.
type Settings struct {
	MainCurrency        string `yaml:"main_currency"`
	EthRPCEndpoint      string `yaml:"eth_rpc_endpoint"`
	EtherscanAPIKey     string `yaml:"etherscan_api_key"`
	CryptocompareAPIKey string `yaml:"cryptocompare_api_key"`
}

// Config is the validated account registry: the set of configured accounts
// and report definitions. It exclusively owns the account list for the
// process lifetime; loading has no side effects beyond reading.
type Config struct {
	settings Settings
	accounts []Account
	reports  []ReportDefinition
}

type configDoc struct {
	Settings Settings     `yaml:"settings"`
	Accounts []accountDoc `yaml:"accounts"`
	Reports  []reportDoc  `yaml:"reports"`
}

type reportDoc struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	Template string `yaml:"template"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// Load parses and validates a configuration document.
func Load(r io.Reader) (*Config, error) {
	var doc configDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(false)
	if err := dec.Decode(&doc); err != nil {
		return nil, &ConfigError{Reason: "cannot parse document", Cause: err}
	}

	cfg := &Config{settings: doc.Settings}
	if cfg.settings.MainCurrency == "" {
		cfg.settings.MainCurrency = DefaultCurrency
	}

	seen := make(map[string]bool)
	for _, d := range doc.Accounts {
		account, err := d.resolve()
		if err != nil {
			return nil, &ConfigError{Reason: "bad account entry", Cause: err}
		}
		if seen[account.Name] {
			return nil, &ConfigError{Reason: fmt.Sprintf("duplicate account name %q", account.Name)}
		}
		seen[account.Name] = true
		cfg.accounts = append(cfg.accounts, account)
	}

	for _, d := range doc.Reports {
		rep, err := d.resolve()
		if err != nil {
			return nil, &ConfigError{Reason: "bad report entry", Cause: err}
		}
		cfg.reports = append(cfg.reports, rep)
	}
	return cfg, nil
}

func (d reportDoc) resolve() (ReportDefinition, error) {
	if d.Name == "" {
		return ReportDefinition{}, fmt.Errorf("report has no name")
	}
	from, err := date.Parse(d.From)
	if err != nil {
		return ReportDefinition{}, fmt.Errorf("report %q: %w", d.Name, err)
	}
	to, err := date.Parse(d.To)
	if err != nil {
		return ReportDefinition{}, fmt.Errorf("report %q: %w", d.Name, err)
	}
	rep := ReportDefinition{Name: d.Name, Title: d.Title, Template: d.Template, From: from, To: to}
	if err := rep.Validate(); err != nil {
		return ReportDefinition{}, err
	}
	return rep, nil
}

// LoadFile loads the configuration document from path. A missing document
// is a ConfigError: there is nothing to run without one.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("cannot read %q", path), Cause: err}
	}
	defer f.Close()
	return Load(f)
}

// Settings returns the document settings with defaults applied.
func (c *Config) Settings() Settings { return c.settings }

// Accounts returns all configured accounts.
func (c *Config) Accounts() []Account { return c.accounts }

// Account returns the named account.
func (c *Config) Account(name string) (Account, bool) {
	for _, a := range c.accounts {
		if a.Name == name {
			return a, true
		}
	}
	return Account{}, false
}

// Reports returns all configured report definitions.
func (c *Config) Reports() []ReportDefinition { return c.reports }

// MatchingAccounts returns the accounts whose name contains keyword.
// An empty keyword matches everything.
func (c *Config) MatchingAccounts(keyword string) []Account {
	var matched []Account
	for _, a := range c.accounts {
		if keyword == "" || strings.Contains(a.Name, keyword) {
			matched = append(matched, a)
		}
	}
	return matched
}

// MatchingReports returns the report definitions whose name contains keyword.
func (c *Config) MatchingReports(keyword string) []ReportDefinition {
	var matched []ReportDefinition
	for _, r := range c.reports {
		if keyword == "" || strings.Contains(r.Name, keyword) {
			matched = append(matched, r)
		}
	}
	return matched
}
