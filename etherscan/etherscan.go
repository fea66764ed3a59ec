// Package etherscan retrieves ethereum address balances through the
// Etherscan API.
package etherscan

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/httputil"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.etherscan.io"

// weiDigits shifts wei into whole ether.
const weiDigits = 18

// Client queries Etherscan for single-address balances. It implements
// coinfolio.ChainBalancer.
type Client struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	apiKey string
	client *http.Client
}

// New returns a client. Etherscan throttles keyless requests hard, so a
// key is strongly recommended.
func New(client *http.Client, apiKey string) *Client {
	if client == nil {
		client = new(http.Client)
	}
	return &Client{BaseURL: defaultBaseURL, apiKey: apiKey, client: client}
}

// AddressBalance returns the ETH balance of the address.
func (c *Client) AddressBalance(_ context.Context, address string) (coinfolio.Quantity, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "balance")
	params.Set("address", address)
	params.Set("tag", "latest")
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	var jobj any
	addr := c.BaseURL + "/api?" + params.Encode()
	if err := httputil.JSONGet(c.client, addr, &jobj); err != nil {
		return coinfolio.Quantity{}, fmt.Errorf("etherscan %s: %w", address, err)
	}

	if status, err := jsonpath.Get("$.status", jobj); err == nil && status != "1" {
		message, _ := jsonpath.Get("$.message", jobj)
		return coinfolio.Quantity{}, fmt.Errorf("etherscan %s: %v", address, message)
	}
	jval, err := jsonpath.Get("$.result", jobj)
	if err != nil {
		return coinfolio.Quantity{}, fmt.Errorf("etherscan %s: no result: %w", address, err)
	}
	wei, ok := jval.(string)
	if !ok {
		return coinfolio.Quantity{}, fmt.Errorf("etherscan %s: result is not a string: %v", address, jval)
	}
	d, err := decimal.NewFromString(wei)
	if err != nil {
		return coinfolio.Quantity{}, fmt.Errorf("etherscan %s: bad wei value %q: %w", address, wei, err)
	}
	return coinfolio.Q(d.Shift(-weiDigits)), nil
}
