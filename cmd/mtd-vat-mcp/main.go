// Command mtd-vat-mcp serves the VAT tools over MCP, using the tokens cached
// by mtd-vat. Both stdio and streamable HTTP transports are supported.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-training/mtd-vat/pkg/config"
	"github.com/go-training/mtd-vat/pkg/core"
	"github.com/go-training/mtd-vat/pkg/logger"
	"github.com/go-training/mtd-vat/pkg/operation"
	"github.com/go-training/mtd-vat/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"github.com/mark3labs/mcp-go/server"
)

// vrnHeader selects the account per HTTP request.
const vrnHeader = "X-VRN"

type options struct {
	Transport string `short:"t" long:"transport" default:"stdio" choice:"stdio" choice:"http" description:"transport type"`
	Addr      string `long:"addr" default:":8080" description:"address to listen on for the http transport"`

	config.Options `group:"mtd-vat"`
}

// MCPServer wraps the underlying MCP server instance.
type MCPServer struct {
	server *server.MCPServer
	tokens core.TokenStore
	vrn    string
}

// NewMCPServer creates an MCP server exposing the VAT tools for the API at
// apiBase. Tokens are read from tokens; vrn is the default account.
func NewMCPServer(apiBase string, tokens core.TokenStore, vrn string) *MCPServer {
	mcpServer := server.NewMCPServer(
		core.Product,
		core.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(operation.ToolHandlerMiddleware()),
	)

	operation.RegisterVATTool(mcpServer, apiBase)

	return &MCPServer{
		server: mcpServer,
		tokens: tokens,
		vrn:    vrn,
	}
}

func (s *MCPServer) withAccount(ctx context.Context, vrn string) context.Context {
	if vrn == "" {
		vrn = s.vrn
	}
	ctx = core.WithStore(ctx, s.tokens)
	ctx = core.WithAccount(ctx, vrn)
	return core.WithRequestID(ctx)
}

// ServeHTTP returns a streamable HTTP server. The X-VRN header overrides the
// default account.
func (s *MCPServer) ServeHTTP() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.server,
		server.WithHeartbeatInterval(30*time.Second),
		server.WithHTTPContextFunc(func(
			ctx context.Context,
			r *http.Request,
		) context.Context {
			return s.withAccount(ctx, r.Header.Get(vrnHeader))
		}),
	)
}

// ServeStdio starts the MCP server using stdio transport for the default
// account.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.server, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return s.withAccount(ctx, "")
	}))
}

func main() {
	var opts options
	if _, err := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash).Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.Version {
		fmt.Println(core.Product, core.Version)
		return
	}

	cfg, err := config.Resolve(&opts.Options)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.NewWithLevel(cfg.LogLevel)

	tokens, err := store.NewStore(cfg.Store)
	if err != nil {
		slog.Error("Failed to create token store", "error", err)
		os.Exit(1)
	}
	defer store.Close(tokens)

	if cfg.AccessToken != "" && cfg.VRN != "" {
		if err := tokens.Write(context.Background(), cfg.VRN, &core.Token{AccessToken: cfg.AccessToken}); err != nil {
			slog.Error("Failed to cache access token", "error", err)
			os.Exit(1)
		}
	}

	mcpServer := NewMCPServer(cfg.Endpoints.API, tokens, cfg.VRN)

	switch opts.Transport {
	case "stdio":
		if err := mcpServer.ServeStdio(); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	case "http":
		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(gin.Recovery())
		handler := gin.WrapH(mcpServer.ServeHTTP())
		for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
			router.Handle(method, "/mcp", handler)
		}

		slog.Info("MCP HTTP server listening", "addr", opts.Addr)
		srv := &http.Server{
			Addr:         opts.Addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}
}
