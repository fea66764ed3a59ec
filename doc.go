// Package coinfolio tracks cryptocurrency holdings and trade history across
// heterogeneous sources (exchange accounts, blockchain addresses, and
// manually maintained files), normalizes everything into a common ledger,
// and produces fiat-denominated valuations and tax-relevant summaries.
//
// The root package holds the domain model: accounts, trades, balances,
// the per-account trade ledger store, the currency converter and the
// balance aggregator. Subpackages hold the external service clients
// (kraken, etherscan, blockstream, cryptocompare), the tax-lot accounting
// collaborator (accounting), the markdown renderer (renderer) and the CLI
// (cmd, cfo).
package coinfolio
