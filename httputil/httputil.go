// Package httputil contains http utils to deal with remote services.
package httputil

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// diskCache implements a simple disk cache for HTTP GET responses.
type diskCache struct {
	base http.RoundTripper
	dir  string
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	if req.Method != http.MethodGet || strings.Contains(req.Header.Get("Cache-Control"), "no-store") {
		// authenticated calls carry nonces, and no-store marks volatile data
		// such as spot quotes; neither must be replayed from disk
		return c.base.RoundTrip(req)
	}

	// the key is unique per day, so the cached copy expires every day.
	key := fmt.Sprintf("%s %s %s", time.Now().Format("2006-01-02"), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(c.dir, key))
	if err != nil {
		return err
	}

	_, err = f.Write(content)
	f.Close()
	return err
}

// NewCachedClient returns a client caching GET responses under dir, all
// with daily expiry. The cache directory is explicit so each run owns its
// cache lifetime.
func NewCachedClient(dir string) *http.Client {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("cannot create http cache dir %q (cache disabled): %v", dir, err)
		return new(http.Client)
	}
	client := new(http.Client)
	client.Transport = &diskCache{base: http.DefaultTransport, dir: dir}
	return client
}

// JSONGet performs an HTTP GET request and unmarshals the JSON response into the provided data structure.
func JSONGet(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}

// JSONGetNumber is JSONGet, decoding numbers as json.Number so monetary
// values keep their exact decimal representation.
func JSONGetNumber(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	return decodeNumber(resp, data)
}

// JSONGetLive is JSONGetNumber for volatile data such as spot quotes: the
// request is marked no-store so a caching transport neither serves nor
// records it.
func JSONGetLive(client *http.Client, addr string, data interface{}) error {
	req, err := http.NewRequest(http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-store")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return decodeNumber(resp, data)
}

func decodeNumber(resp *http.Response, data interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(data)
}
