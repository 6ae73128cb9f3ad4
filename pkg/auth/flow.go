// Package auth drives the OAuth 2.0 authorization-code grant against HMRC:
// consent in the browser, code capture on a loopback listener and the
// exchange for an access token.
package auth

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-training/mtd-vat/pkg/callback"
	"github.com/go-training/mtd-vat/pkg/core"
)

// CodeReceiver captures a single authorization code.
type CodeReceiver interface {
	Start() error
	AwaitCode(ctx context.Context) (string, error)
}

// TokenExchanger trades a code for a token.
type TokenExchanger interface {
	Exchange(ctx context.Context, creds core.ClientCredentials, code string) (*core.Token, error)
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithReceiver replaces the default callback listener.
func WithReceiver(r CodeReceiver) FlowOption {
	return func(f *Flow) { f.receiver = r }
}

// WithExchanger replaces the default token exchanger.
func WithExchanger(e TokenExchanger) FlowOption {
	return func(f *Flow) { f.exchanger = e }
}

// WithBrowser replaces the default browser opener.
func WithBrowser(open BrowserOpener) FlowOption {
	return func(f *Flow) { f.openBrowser = open }
}

// WithOutput sets where the fallback instruction is printed.
func WithOutput(w io.Writer) FlowOption {
	return func(f *Flow) { f.out = w }
}

// Flow is the end-to-end authorization-code grant.
type Flow struct {
	endpoints   Endpoints
	redirectURL string
	receiver    CodeReceiver
	exchanger   TokenExchanger
	openBrowser BrowserOpener
	out         io.Writer
}

// NewFlow creates a Flow against endpoints using the fixed RedirectURL.
func NewFlow(endpoints Endpoints, opts ...FlowOption) *Flow {
	f := &Flow{
		endpoints:   endpoints,
		redirectURL: RedirectURL,
		openBrowser: OpenBrowser,
		out:         os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.receiver == nil {
		f.receiver = callback.NewServer()
	}
	if f.exchanger == nil {
		f.exchanger = NewExchanger(endpoints, f.redirectURL, nil)
	}
	return f
}

// AuthorizeURL returns the consent URL for clientID.
func (f *Flow) AuthorizeURL(clientID string) string {
	cfg := f.endpoints.OAuth2Config(core.ClientCredentials{ClientID: clientID}, f.redirectURL)
	return cfg.AuthCodeURL("")
}

// Run performs the grant and returns the resulting token. It ends in exactly
// one token or one error.
func (f *Flow) Run(ctx context.Context, creds core.ClientCredentials) (*core.Token, error) {
	ctx = core.WithRequestID(ctx)
	logger := core.LoggerFromCtx(ctx)

	authURL := f.AuthorizeURL(creds.ClientID)

	if err := f.receiver.Start(); err != nil {
		return nil, err
	}

	logger.Info("Opening browser to authorization URL", "url", authURL)
	if err := f.openBrowser(authURL); err != nil {
		logger.Warn("Failed to open browser", "err", err)
		fmt.Fprintf(f.out, "Open %s in browser to authorize\n", authURL)
	}

	logger.Info("Waiting for authorization callback...")
	code, err := f.receiver.AwaitCode(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("Exchanging authorization code for token...")
	token, err := f.exchanger.Exchange(ctx, creds, code)
	if err != nil {
		return nil, err
	}

	logger.Info("Authorization successful")
	return token, nil
}
