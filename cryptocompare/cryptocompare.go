// Package cryptocompare implements a price source over the CryptoCompare
// public API, for spot and historical asset prices.
package cryptocompare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/httputil"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://min-api.cryptocompare.com"

// Client queries CryptoCompare. It implements coinfolio.PriceSource.
type Client struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	apiKey string
	client *http.Client
}

// New returns a client. The API key is optional for low request volumes.
func New(client *http.Client, apiKey string) *Client {
	if client == nil {
		client = new(http.Client)
	}
	return &Client{BaseURL: defaultBaseURL, apiKey: apiKey, client: client}
}

func (c *Client) get(addr string, data any) error {
	return httputil.JSONGetNumber(c.client, addr, data)
}

func (c *Client) query(path string, params url.Values) string {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	return c.BaseURL + path + "?" + params.Encode()
}

// price extracts the currency entry of a CryptoCompare price object,
// reporting the service's own error message when there is one.
func price(obj map[string]any, currency string) (decimal.Decimal, error) {
	if obj["Response"] == "Error" {
		return decimal.Zero, fmt.Errorf("cryptocompare: %v", obj["Message"])
	}
	raw, ok := obj[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("cryptocompare: no %s price in response", currency)
	}
	num, ok := raw.(json.Number)
	if !ok {
		return decimal.Zero, fmt.Errorf("cryptocompare: %s price is not a number: %v", currency, raw)
	}
	return decimal.NewFromString(num.String())
}

// Spot returns the current price of one unit of asset in currency. The
// request bypasses any response cache: a spot quote is only worth its
// freshness, the short-lived in-memory price cache is its only reuse.
func (c *Client) Spot(_ context.Context, asset coinfolio.Asset, currency string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("fsym", asset.ID)
	params.Set("tsyms", currency)

	var obj map[string]any
	if err := httputil.JSONGetLive(c.client, c.query("/data/price", params), &obj); err != nil {
		return decimal.Zero, err
	}
	return price(obj, currency)
}

// Historical returns the price of one unit of asset in currency at the
// given time.
func (c *Client) Historical(_ context.Context, asset coinfolio.Asset, currency string, at time.Time) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("fsym", asset.ID)
	params.Set("tsyms", currency)
	params.Set("ts", fmt.Sprintf("%d", at.Unix()))

	var obj map[string]any
	if err := c.get(c.query("/data/pricehistorical", params), &obj); err != nil {
		return decimal.Zero, err
	}
	if obj["Response"] == "Error" {
		return decimal.Zero, fmt.Errorf("cryptocompare: %v", obj["Message"])
	}
	inner, ok := obj[asset.ID].(map[string]any)
	if !ok {
		return decimal.Zero, fmt.Errorf("cryptocompare: no %s entry in historical response", asset.ID)
	}
	return price(inner, currency)
}
