package blockstream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/coinfolio"
)

func TestAddressBalance(t *testing.T) {
	const address = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/address/"+address {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// confirmed 0.31337 BTC, plus mempool noise that must be ignored
		fmt.Fprint(w, `{
			"chain_stats":{"funded_txo_sum":41337000,"spent_txo_sum":10000000},
			"mempool_stats":{"funded_txo_sum":999,"spent_txo_sum":0}
		}`)
	}))
	defer server.Close()

	c := New(server.Client())
	c.BaseURL = server.URL
	amount, err := c.AddressBalance(context.Background(), address)
	if err != nil {
		t.Fatalf("AddressBalance() error: %v", err)
	}
	want, _ := coinfolio.ParseQuantity("0.31337")
	if !amount.Equal(want) {
		t.Errorf("AddressBalance() = %s, want 0.31337", amount)
	}
}

func TestAddressBalanceHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid Bitcoin address", http.StatusBadRequest)
	}))
	defer server.Close()

	c := New(server.Client())
	c.BaseURL = server.URL
	if _, err := c.AddressBalance(context.Background(), "garbage"); err == nil {
		t.Fatal("AddressBalance() accepted an HTTP error")
	}
}
