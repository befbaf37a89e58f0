// Package postal talks to the public pincode lookup API and runs every body it
// gets back through the response classifier.
package postal

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"pincode-backend/config"
	"pincode-backend/internal/classify"
)

// Response is the raw upstream answer: status code and untouched body.
type Response struct {
	StatusCode int
	Body       string
}

// Result is a classified lookup.
type Result struct {
	Pincode    string                    `json:"pincode"`
	StatusCode int                       `json:"status_code"`
	Outcome    classify.Outcome          `json:"outcome"`
	Message    string                    `json:"message"`
	Record     classify.PostOfficeRecord `json:"record,omitempty"`
}

// Field is one printable record field.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// knownFields is the order the API documents its post office fields in.
var knownFields = []string{
	"Name", "Description", "BranchType", "DeliveryStatus", "Circle", "District",
	"Division", "Region", "Block", "State", "Country", "Pincode",
}

// Fields returns the record's fields in a stable order: documented keys first,
// then any others alphabetically. Null values print as "None".
func (r *Result) Fields() []Field {
	if r == nil || r.Record == nil {
		return nil
	}
	seen := make(map[string]bool, len(r.Record))
	fields := make([]Field, 0, len(r.Record))
	add := func(k string) {
		v := r.Record.String(k)
		if r.Record[k] == nil {
			v = "None"
		}
		fields = append(fields, Field{Key: k, Value: v})
		seen[k] = true
	}
	for _, k := range knownFields {
		if _, ok := r.Record[k]; ok {
			add(k)
		}
	}
	var rest []string
	for k := range r.Record {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		add(k)
	}
	return fields
}

// Client fetches pincode details from the upstream API.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a client from the postal configuration.
func NewClient(cfg config.PostalConfig) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Postal client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultPostalEndpoint
	}

	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// Fetch performs GET <endpoint>/<pincode> and returns the status and body as-is.
func (c *Client) Fetch(ctx context.Context, pincode string) (Response, error) {
	target := strings.TrimRight(c.endpoint, "/") + "/" + url.PathEscape(pincode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, &FetchError{Pincode: pincode, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, &FetchError{Pincode: pincode, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &FetchError{Pincode: pincode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return Response{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// Lookup fetches the pincode, gates on a 200 status and classifies the body.
// Classification outcomes are returned in the Result, not as errors.
func (c *Client) Lookup(ctx context.Context, pincode string) (*Result, error) {
	resp, err := c.Fetch(ctx, pincode)
	if err != nil {
		log.Printf("Postal lookup for %s failed: %v", pincode, err)
		return nil, err
	}
	log.Printf("API request for %s answered with status %d", pincode, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Pincode: pincode, StatusCode: resp.StatusCode}
	}

	record, outcome := classify.Extract(resp.Body)
	log.Printf("Response status after classification for %s: %s", pincode, outcome)

	return &Result{
		Pincode:    pincode,
		StatusCode: resp.StatusCode,
		Outcome:    outcome,
		Message:    outcome.Message(),
		Record:     record,
	}, nil
}
