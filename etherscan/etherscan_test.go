package etherscan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/coinfolio"
)

func TestAddressBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "account" || q.Get("action") != "balance" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("apikey") != "test-key" {
			t.Error("api key not forwarded")
		}
		// 1.5 ETH in wei
		fmt.Fprint(w, `{"status":"1","message":"OK","result":"1500000000000000000"}`)
	}))
	defer server.Close()

	c := New(server.Client(), "test-key")
	c.BaseURL = server.URL
	amount, err := c.AddressBalance(context.Background(), "0xb794f5ea0ba39494ce839613fffba74279579268")
	if err != nil {
		t.Fatalf("AddressBalance() error: %v", err)
	}
	want, _ := coinfolio.ParseQuantity("1.5")
	if !amount.Equal(want) {
		t.Errorf("AddressBalance() = %s, want 1.5", amount)
	}
}

func TestAddressBalanceServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`)
	}))
	defer server.Close()

	c := New(server.Client(), "")
	c.BaseURL = server.URL
	if _, err := c.AddressBalance(context.Background(), "0xb794f5ea0ba39494ce839613fffba74279579268"); err == nil {
		t.Fatal("AddressBalance() accepted a NOTOK response")
	}
}
