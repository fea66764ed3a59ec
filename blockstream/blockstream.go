// Package blockstream retrieves bitcoin address balances through the
// Blockstream Esplora API.
package blockstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/httputil"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://blockstream.info/api"

// satDigits shifts satoshi into whole bitcoin.
const satDigits = 8

// Client queries Blockstream for single-address balances. It implements
// coinfolio.ChainBalancer.
type Client struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	client *http.Client
}

// New returns a client. No key is required.
func New(client *http.Client) *Client {
	if client == nil {
		client = new(http.Client)
	}
	return &Client{BaseURL: defaultBaseURL, client: client}
}

// addressStats is the relevant slice of the Esplora address object.
type addressStats struct {
	ChainStats struct {
		FundedSum int64 `json:"funded_txo_sum"`
		SpentSum  int64 `json:"spent_txo_sum"`
	} `json:"chain_stats"`
	MempoolStats struct {
		FundedSum int64 `json:"funded_txo_sum"`
		SpentSum  int64 `json:"spent_txo_sum"`
	} `json:"mempool_stats"`
}

// AddressBalance returns the confirmed BTC balance of the address.
func (c *Client) AddressBalance(_ context.Context, address string) (coinfolio.Quantity, error) {
	var stats addressStats
	if err := httputil.JSONGet(c.client, c.BaseURL+"/address/"+address, &stats); err != nil {
		return coinfolio.Quantity{}, fmt.Errorf("blockstream %s: %w", address, err)
	}
	sats := stats.ChainStats.FundedSum - stats.ChainStats.SpentSum
	return coinfolio.Q(decimal.New(sats, -satDigits)), nil
}
