// Command mtd-vat-sandbox serves a local stand-in for the HMRC authorization
// and VAT endpoints. Point mtd-vat at it with --www-base and --api-base.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-training/mtd-vat/pkg/auth"
	"github.com/go-training/mtd-vat/pkg/logger"
	"github.com/go-training/mtd-vat/pkg/sandbox"
	"github.com/go-training/mtd-vat/pkg/vat"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
)

type options struct {
	Addr         string `long:"addr" default:":8095" description:"address to listen on"`
	ClientID     string `long:"client-id" env:"CLIENT_ID" description:"client id to accept"`
	ClientSecret string `long:"client-secret" env:"CLIENT_SECRET" description:"client secret to accept"`
	VRN          string `long:"vrn" env:"VRN" description:"VAT registration number to seed obligations for"`
	Quarters     int    `long:"quarters" default:"2" description:"number of open quarterly obligations to seed"`
}

// seedObligations adds n open quarters ending with the last complete quarter
// before now. Each is due one month and seven days after it ends.
func seedObligations(sb *sandbox.Server, vrn string, n int, now time.Time) {
	quarterStart := time.Date(now.Year(), ((now.Month()-1)/3)*3+1, 1, 0, 0, 0, 0, time.UTC)
	for i := n; i >= 1; i-- {
		start := quarterStart.AddDate(0, -3*i, 0)
		end := start.AddDate(0, 3, -1)
		sb.AddObligation(vrn, vat.Obligation{
			Start:     start.Format(time.DateOnly),
			End:       end.Format(time.DateOnly),
			Due:       start.AddDate(0, 4, 6).Format(time.DateOnly),
			Status:    "O",
			PeriodKey: fmt.Sprintf("%02dA%d", start.Year()%100, (start.Month()-1)/3+1),
		})
	}
}

func main() {
	logger.New()

	var opts options
	if _, err := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash).Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.ClientID == "" || opts.ClientSecret == "" || opts.VRN == "" {
		slog.Error("client id, client secret and vrn are required")
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)

	sb := sandbox.New()
	sb.RegisterClient(opts.ClientID, opts.ClientSecret, auth.RedirectURL)
	seedObligations(sb, opts.VRN, opts.Quarters, time.Now().UTC())

	slog.Info("Sandbox listening", "addr", opts.Addr, "vrn", opts.VRN)
	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      sb.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server shutdown gracefully")
}
