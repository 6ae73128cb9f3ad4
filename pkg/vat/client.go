// Package vat is a client for the HMRC VAT (MTD) API.
package vat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-training/mtd-vat/pkg/core"
	"github.com/go-training/mtd-vat/pkg/fraud"

	"golang.org/x/oauth2"
)

const (
	acceptHeader   = "application/vnd.hmrc.1.0+json"
	requestTimeout = 30 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithFraudBuilder replaces the default fraud-prevention header builder.
func WithFraudBuilder(b *fraud.Builder) Option {
	return func(c *Client) { c.fraud = b }
}

// WithTransport sets the base round tripper below the auth and fraud layers.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// Client calls the VAT API for one VAT registration number.
type Client struct {
	apiBase    string
	vrn        string
	fraud      *fraud.Builder
	base       http.RoundTripper
	httpClient *http.Client
}

// NewClient creates a client authenticated with token. Every request carries
// the bearer token and the fraud-prevention headers.
func NewClient(apiBase string, token *core.Token, vrn string, opts ...Option) *Client {
	c := &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		vrn:     vrn,
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fraud == nil {
		c.fraud = fraud.NewBuilder()
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.AccessToken, TokenType: "Bearer"})
	c.httpClient = &http.Client{
		Timeout: requestTimeout,
		Transport: &oauth2.Transport{
			Source: src,
			Base:   &fraud.Transport{Builder: c.fraud, Base: c.base},
		},
	}
	return c
}

// VRN returns the VAT registration number the client acts for.
func (c *Client) VRN() string {
	return c.vrn
}

func (c *Client) url(path string) string {
	return c.apiBase + "/organisations/vat/" + url.PathEscape(c.vrn) + path
}

// OpenObligations lists open obligations sorted by start date.
func (c *Client) OpenObligations(ctx context.Context) ([]Obligation, error) {
	u := c.url("/obligations") + "?" + url.Values{"status": {"O"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var out obligations
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &core.DecodeError{Source: "obligations response", Err: err}
	}
	sort.SliceStable(out.Obligations, func(i, j int) bool {
		return out.Obligations[i].Start < out.Obligations[j].Start
	})
	return out.Obligations, nil
}

// SubmitReturn submits r. The receipt is nil when the response has no body.
func (c *Client) SubmitReturn(ctx context.Context, r *Return) (*Receipt, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal return: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/returns"), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var receipt Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, &core.DecodeError{Source: "return receipt", Err: err}
	}
	return &receipt, nil
}

// do sends req and returns the body of a 2xx response. Any other status is a
// *core.StatusError carrying the body.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", acceptHeader)

	logger := core.LoggerFromCtx(req.Context())
	logger.Debug("VAT API request", "method", req.Method, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.StatusError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, nil
}
