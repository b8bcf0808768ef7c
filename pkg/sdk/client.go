package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Client is the gateway SDK entry point.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client for the gateway at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    hc,
	}
}

// Query runs the full answer pipeline for one question.
func (c *Client) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	var out QueryResponse
	err := c.do(ctx, http.MethodPost, "/query", req, &out)
	return out, err
}

// Chat answers a prompt directly, without retrieval or enrichment.
func (c *Client) Chat(ctx context.Context, prompt string) (ChatResponse, error) {
	var out ChatResponse
	err := c.do(ctx, http.MethodPost, "/chat", map[string]string{"prompt": prompt}, &out)
	return out, err
}

// Status reports aggregated component health.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	return out, err
}

// DomainMetrics returns the latest extracted metric snapshot for a domain.
func (c *Client) DomainMetrics(ctx context.Context, domain string) (DomainMetricsResponse, error) {
	var out DomainMetricsResponse
	err := c.do(ctx, http.MethodGet, "/metrics/"+url.PathEscape(domain), nil, &out)
	return out, err
}

// Alerts returns alert history, newest first.
func (c *Client) Alerts(ctx context.Context, filter AlertFilter) (AlertsResponse, error) {
	q := url.Values{}
	if filter.Domain != "" {
		q.Set("domain", filter.Domain)
	}
	if filter.Severity != "" {
		q.Set("severity", filter.Severity)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/alerts"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out AlertsResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	// Client errors carry {code, message}; server errors carry
	// {error, message, timestamp}.
	var payload struct {
		Code    string `json:"code"`
		Err     string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	code := payload.Code
	if code == "" {
		code = payload.Err
	}
	if payload.Message == "" {
		payload.Message = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    payload.Message,
		sentinel:   sentinelForCode(code, resp.StatusCode),
	}
}
