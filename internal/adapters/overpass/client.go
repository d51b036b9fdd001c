// internal/adapters/overpass/client.go
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"accessible_map/internal/adapters/observability"
	"accessible_map/internal/domain"
)

const (
	DefaultURL = "https://overpass-api.de/api/interpreter"
	userAgent  = "accessible-map/1.0"
)

type Options struct {
	RPS         float64       // <= 0 means 1
	MaxInFlight int           // <= 0 means 2
	Timeout     time.Duration // transport timeout, 0 means none
}

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
	sem  *semaphore.Weighted
}

func New(base string, o Options) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("interpreter URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("interpreter URL: %w", err)
	}
	if o.RPS <= 0 {
		o.RPS = 1
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = 2
	}
	burst := int(o.RPS)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: o.Timeout},
		rl:   rate.NewLimiter(rate.Limit(o.RPS), burst),
		sem:  semaphore.NewWeighted(int64(o.MaxInFlight)),
	}, nil
}

// RequestURL is the GET target for query, with the query URL-encoded in "data".
func (c *Client) RequestURL(query string) string {
	sep := "?"
	if strings.Contains(c.base, "?") {
		sep = "&"
	}
	return c.base + sep + url.Values{"data": {query}}.Encode()
}

// Elements is a pointer so a body without the field (an interpreter remark,
// `{}` or `null`) is told apart from an empty result.
type response struct {
	Elements *[]domain.RawElement `json:"elements"`
}

// Interpret runs query and returns the elements in response order. Calls are
// paced by the limiter and capped process-wide; nothing is retried.
func (c *Client) Interpret(ctx context.Context, query string) ([]domain.RawElement, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer c.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("overpass", "interpreter", 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("overpass", "interpreter", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := http.StatusText(resp.StatusCode)
		if s := strings.TrimSpace(string(b)); s != "" {
			msg += ": " + s
		}
		return nil, fmt.Errorf("%w: interpreter returned %d %s", domain.ErrNetwork, resp.StatusCode, msg)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	if out.Elements == nil {
		return nil, fmt.Errorf("%w: response has no elements", domain.ErrParse)
	}
	return *out.Elements, nil
}
