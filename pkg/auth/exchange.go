package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-training/mtd-vat/pkg/core"
)

const requestTimeout = 30 * time.Second

// Exchanger trades an authorization code for an access token.
type Exchanger struct {
	tokenURL    string
	redirectURL string
	httpClient  *http.Client
}

// NewExchanger creates an Exchanger posting to the token endpoint of endpoints.
// A nil client uses one with a request timeout.
func NewExchanger(endpoints Endpoints, redirectURL string, client *http.Client) *Exchanger {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Exchanger{
		tokenURL:    endpoints.TokenURL(),
		redirectURL: redirectURL,
		httpClient:  client,
	}
}

// Exchange posts the code to the token endpoint as a form.
// Non-2xx responses become *core.StatusError carrying the full body, and
// a malformed body becomes *core.DecodeError.
func (e *Exchanger) Exchange(ctx context.Context, creds core.ClientCredentials, code string) (*core.Token, error) {
	form := url.Values{}
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", e.redirectURL)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.StatusError{
			URL:        e.tokenURL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var token core.Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &core.DecodeError{Source: "token response", Err: err}
	}

	core.LoggerFromCtx(ctx).Debug("Token exchange successful", "token_url", e.tokenURL)
	return &token, nil
}
