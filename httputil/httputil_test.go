package httputil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestCachedClientReplaysGets(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	client := NewCachedClient(t.TempDir())
	for i := 0; i < 3; i++ {
		var data map[string]any
		if err := JSONGet(client, server.URL+"/quote", &data); err != nil {
			t.Fatalf("JSONGet() error: %v", err)
		}
		if data["value"] != float64(42) {
			t.Fatalf("JSONGet() = %v, want 42", data)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("3 GETs reached the server %d times, want 1", got)
	}
}

func TestCachedClientNeverCachesPosts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	client := NewCachedClient(t.TempDir())
	for i := 0; i < 2; i++ {
		resp, err := client.Post(server.URL, "text/plain", strings.NewReader("nonce=1"))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("2 POSTs reached the server %d times, want 2", got)
	}
}

func TestCachedClientSkipsErrorResponses(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "come back later", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	client := NewCachedClient(t.TempDir())
	var data map[string]any
	if err := JSONGet(client, server.URL, &data); err == nil {
		t.Fatal("JSONGet() accepted a 503")
	}
	// the failure was not cached: the retry reaches the server and succeeds
	if err := JSONGet(client, server.URL, &data); err != nil {
		t.Fatalf("JSONGet() retry error: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2", got)
	}
}

func TestJSONGetNumberKeepsDigits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"price":39487.123456789012345}`)
	}))
	defer server.Close()

	var data map[string]any
	if err := JSONGetNumber(server.Client(), server.URL, &data); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(data["price"]) != "39487.123456789012345" {
		t.Errorf("price = %v, digits were lost", data["price"])
	}
}

func TestJSONGetLiveBypassesCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, `{"price":%d}`, hits.Load())
	}))
	defer server.Close()

	client := NewCachedClient(t.TempDir())
	for i := int32(1); i <= 3; i++ {
		var data map[string]any
		if err := JSONGetLive(client, server.URL+"/spot", &data); err != nil {
			t.Fatalf("JSONGetLive() error: %v", err)
		}
		if fmt.Sprint(data["price"]) != fmt.Sprint(i) {
			t.Fatalf("call %d replayed a stale body: %v", i, data)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("3 live GETs reached the server %d times, want 3", got)
	}
}
