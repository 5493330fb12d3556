// Package fetch retrieves the portfolio payload that seeds a live stream.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog/log"

	"github.com/saudanwar3/portfolio"
)

// DefaultURL serves a sample portfolio.
const DefaultURL = "https://dummyjson.com/c/60b7-70a6-4ee3-bae8"

// DefaultPath locates the portfolio object in the payload served at DefaultURL.
const DefaultPath = "$.portfolio"

// Client fetches the portfolio from an HTTP endpoint.
type Client struct {
	// HTTP is the client used to perform requests, http.DefaultClient if nil.
	HTTP *http.Client
	// URL of the payload, DefaultURL if empty.
	URL string
	// Path is the jsonpath of the portfolio object inside the payload.
	// DefaultPath if empty, "$" when the payload is the portfolio itself.
	Path string
}

// Fetch performs a single GET request and decodes the portfolio.
func (c *Client) Fetch(ctx context.Context) (portfolio.Portfolio, error) {
	addr := c.URL
	if addr == "" {
		addr = DefaultURL
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	var doc any
	if err := jwget(ctx, client, addr, &doc); err != nil {
		return portfolio.Portfolio{}, err
	}
	return extract(doc, c.Path)
}

// File reads the portfolio from a local JSON file.
type File struct {
	Name string
	// Path is the jsonpath of the portfolio object inside the file, "$" if empty.
	Path string
}

// Fetch reads and decodes the file. It never blocks on ctx.
func (f File) Fetch(_ context.Context) (portfolio.Portfolio, error) {
	data, err := os.ReadFile(f.Name)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("cannot read portfolio file: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("cannot parse %q: %w", f.Name, err)
	}
	path := f.Path
	if path == "" {
		path = "$"
	}
	return extract(doc, path)
}

// extract finds the portfolio object at path in doc and decodes it.
func extract(doc any, path string) (portfolio.Portfolio, error) {
	if path == "" {
		path = DefaultPath
	}
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("cannot find portfolio at %q: %w", path, err)
	}
	// jsonpath may answer a list of one match instead of the match itself.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		if _, isObj := jlist[0].(map[string]any); isObj {
			jval = jlist[0]
		}
	}
	if _, ok := jval.(map[string]any); !ok {
		return portfolio.Portfolio{}, fmt.Errorf("cannot find portfolio at %q: not an object", path)
	}

	data, err := json.Marshal(jval)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("cannot find portfolio at %q: %w", path, err)
	}
	return portfolio.DecodePortfolio(bytes.NewReader(data))
}

// jwget performs an HTTP GET request and unmarshals the JSON response into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Errorf("cannot http GET %v: %w", addr, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot http GET %v: %w", addr, err)
	}
	defer resp.Body.Close()
	log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("fetch")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return fmt.Errorf("cannot read %v/%v: %w", req.URL.Host, req.URL.Path, err)
	}
	if err := json.Unmarshal(buf.Bytes(), data); err != nil {
		return fmt.Errorf("cannot parse %v/%v: %w", req.URL.Host, req.URL.Path, err)
	}
	return nil
}
