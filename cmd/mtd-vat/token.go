package main

import (
	"context"
	"fmt"
	"io"

	"github.com/go-training/mtd-vat/pkg/config"
	"github.com/go-training/mtd-vat/pkg/core"
)

type authorizeFunc func(ctx context.Context, creds core.ClientCredentials) (*core.Token, error)

// obtainToken prefers an explicit access token, then the cache, then a new
// authorization whose result is cached. A failed cache read is logged and
// treated as a miss.
func obtainToken(
	ctx context.Context,
	cfg *config.Config,
	tokens core.TokenStore,
	authorize authorizeFunc,
	out io.Writer,
) (*core.Token, error) {
	logger := core.LoggerFromCtx(ctx)

	if cfg.AccessToken != "" {
		return &core.Token{AccessToken: cfg.AccessToken}, nil
	}

	if !cfg.Reauth {
		token, err := tokens.Read(ctx, cfg.VRN)
		switch {
		case err != nil:
			logger.Warn("Ignoring unreadable cached token", "vrn", cfg.VRN, "error", err)
		case token.Valid():
			logger.Debug("Using cached token", "vrn", cfg.VRN)
			return token, nil
		}
	}

	fmt.Fprintln(out, "Use browser to permit app access...")

	authCtx := ctx
	if cfg.AuthTimeout > 0 {
		var cancel context.CancelFunc
		authCtx, cancel = context.WithTimeout(ctx, cfg.AuthTimeout)
		defer cancel()
	}

	token, err := authorize(authCtx, cfg.Credentials)
	if err != nil {
		return nil, err
	}

	if err := tokens.Write(ctx, cfg.VRN, token); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Authorized, token cached for %s\n", cfg.VRN)
	return token, nil
}
