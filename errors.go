package coinfolio

import "fmt"

// Error taxonomy.
//
// ConfigError is fatal and aborts the whole command. SourceUnavailable,
// PriceUnavailable and LedgerNotFound are per-account or per-asset
// conditions: callers log them and continue with the rest of the run.
// ReportError is fatal for a single report only.

// ConfigError reports a malformed or invalid configuration document.
type ConfigError struct {
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// SourceUnavailable reports that one account's fetch or validation failed.
// The account is skipped; the run continues.
type SourceUnavailable struct {
	Account string
	Cause   error
}

func (e *SourceUnavailable) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.Account, e.Cause)
}

func (e *SourceUnavailable) Unwrap() error { return e.Cause }

// PriceUnavailable reports that no price source has data for an asset.
// The asset's value is marked missing; its quantity is still reported.
type PriceUnavailable struct {
	Asset Asset
	Cause error
}

func (e *PriceUnavailable) Error() string {
	return fmt.Sprintf("no price for %s: %v", e.Asset, e.Cause)
}

func (e *PriceUnavailable) Unwrap() error { return e.Cause }

// LedgerNotFound reports that no trade ledger has been persisted for an
// account. Distinct from an empty ledger, which is a valid zero-length list.
type LedgerNotFound struct {
	Account string
	Path    string
}

func (e *LedgerNotFound) Error() string {
	return fmt.Sprintf("no ledger for account %q (%s)", e.Account, e.Path)
}

// ReportError reports that the accounting collaborator failed while running
// a report. In a batch run the other reports continue.
type ReportError struct {
	Report string
	Cause  error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report %q failed: %v", e.Report, e.Cause)
}

func (e *ReportError) Unwrap() error { return e.Cause }
