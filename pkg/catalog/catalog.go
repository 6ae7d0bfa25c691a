// Package catalog talks to the product catalog backend over HTTP and
// normalizes its records into the Product shape the agents consume. A Stub
// provider serves fixture data when no backend is configured.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

const (
	defaultMaxResults    = 20
	maxResponseSizeBytes = 4 << 20
)

type Config struct {
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	MaxResults int           `envconfig:"MAX_RESULTS" split_words:"true" default:"20"`
	Currency   string        `envconfig:"CURRENCY" split_words:"true" default:"KWD"`
}

// Client is the HTTP catalog provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxResults int
	currency   string
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("catalog base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid catalog base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxResults: maxResults,
		currency:   strings.TrimSpace(cfg.Currency),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

var _ contractx.CatalogProvider = (*Client)(nil)

// wireProduct tolerates the backend's loose price typing: a number, a
// numeric string, or a display string like "12.500 KD".
type wireProduct struct {
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"`
	Currency string          `json:"currency"`
	URL      string          `json:"url"`
	Vendor   string          `json:"vendor"`
}

func (c *Client) Search(ctx context.Context, query string) ([]contractx.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", contractx.ErrValidation)
	}

	endpoint := c.baseURL + "/products?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", contractx.ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog http status=%d", contractx.ErrProviderUnavailable, resp.StatusCode)
	}

	var records []wireProduct
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", contractx.ErrProviderUnavailable, err)
	}

	products := make([]contractx.Product, 0, len(records))
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			continue
		}
		p := contractx.Product{
			Name:     name,
			URL:      strings.TrimSpace(rec.URL),
			Vendor:   strings.TrimSpace(rec.Vendor),
			Currency: strings.TrimSpace(rec.Currency),
		}
		if p.Currency == "" {
			p.Currency = c.currency
		}
		p.Price, p.PriceKnown = parsePrice(rec.Price)

		products = append(products, p)
		if len(products) == c.maxResults {
			break
		}
	}
	return products, nil
}

var priceDigits = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parsePrice extracts a numeric amount from whatever the backend sent. An
// unparseable price is reported as unknown, never as zero-priced.
func parsePrice(raw json.RawMessage) (float64, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, asNumber > 0
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return 0, false
	}
	match := priceDigits.FindString(strings.ReplaceAll(asString, ",", ""))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Stub serves a small fixed inventory; it stands in for the real backend in
// development and tests.
type Stub struct {
	Products []contractx.Product
}

func NewStub() *Stub {
	return &Stub{Products: []contractx.Product{
		{Name: "Standard Wheelchair", Price: 120, Currency: "KWD", URL: "https://shop.example/standard-wheelchair", PriceKnown: true},
		{Name: "Lightweight Folding Wheelchair", Price: 310, Currency: "KWD", URL: "https://shop.example/folding-wheelchair", PriceKnown: true},
		{Name: "Folding Walker", Price: 45, Currency: "KWD", URL: "https://shop.example/folding-walker", PriceKnown: true},
		{Name: "Walking Cane", Price: 12, Currency: "KWD", URL: "https://shop.example/walking-cane", PriceKnown: true},
		{Name: "Shower Chair", Price: 60, Currency: "KWD", URL: "https://shop.example/shower-chair", PriceKnown: true},
		{Name: "Lumbar Support Cushion", Price: 35, Currency: "KWD", URL: "https://shop.example/lumbar-cushion", PriceKnown: true},
		{Name: "Knee Brace", Price: 18, Currency: "KWD", URL: "https://shop.example/knee-brace", PriceKnown: true},
		{Name: "Blood Pressure Monitor", Price: 28, Currency: "KWD", URL: "https://shop.example/bp-monitor", PriceKnown: true},
	}}
}

var _ contractx.CatalogProvider = (*Stub)(nil)

// Search returns every stub product containing any query term.
func (s *Stub) Search(ctx context.Context, query string) ([]contractx.Product, error) {
	terms := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty query", contractx.ErrValidation)
	}

	var matched []contractx.Product
	for _, p := range s.Products {
		name := strings.ToLower(p.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				matched = append(matched, p)
				break
			}
		}
	}
	return matched, nil
}
