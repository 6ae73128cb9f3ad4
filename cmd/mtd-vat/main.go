// Command mtd-vat lists open VAT obligations and submits nine box returns
// through the HMRC Making Tax Digital API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-training/mtd-vat/pkg/auth"
	"github.com/go-training/mtd-vat/pkg/config"
	"github.com/go-training/mtd-vat/pkg/core"
	"github.com/go-training/mtd-vat/pkg/logger"
	"github.com/go-training/mtd-vat/pkg/store"
	"github.com/go-training/mtd-vat/pkg/vat"

	"github.com/gin-gonic/gin"
)

func main() {
	opts, _, err := config.Parse(os.Args[1:])
	if err != nil {
		if config.IsHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.Version {
		fmt.Println(core.Product, core.Version)
		return
	}

	cfg, err := config.Resolve(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.NewWithLevel(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, os.Stdin, os.Stderr)
	stop()
	if err != nil {
		slog.Error("mtd-vat failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	tokens, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close(tokens)

	flow := auth.NewFlow(cfg.Endpoints, auth.WithOutput(out))
	token, err := obtainToken(ctx, cfg, tokens, flow.Run, out)
	if err != nil {
		return err
	}

	client := vat.NewClient(cfg.Endpoints.API, token, cfg.VRN)
	obligations, err := client.OpenObligations(ctx)
	if err != nil {
		return err
	}

	return fileReturns(ctx, newPrompter(in, out), client, obligations)
}
