// Package callback captures the authorization code delivered to the local
// redirect URI after the user grants consent in the browser.
package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-training/mtd-vat/pkg/core"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultAddr is the address the redirect URI points at.
	DefaultAddr = "0.0.0.0:54786"
	// SuccessPage is returned for every request, with or without a code.
	SuccessPage = "mtd-vat redirect success, continue with CLI"

	shutdownTimeout = 5 * time.Second
)

// ErrServerClosed is returned by AwaitCode when the listener stops before a
// code arrives.
var ErrServerClosed = errors.New("redirect listener ended before a code arrived")

// ErrNotStarted is returned by AwaitCode when Start has not been called.
var ErrNotStarted = errors.New("redirect listener not started")

// Option configures a Server.
type Option func(*Server)

// WithAddr overrides the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// Server is an ephemeral HTTP endpoint that captures one authorization code.
type Server struct {
	addr string
	slot *Slot

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
	serveErr chan error
}

// NewServer creates a Server bound to DefaultAddr unless overridden.
func NewServer(opts ...Option) *Server {
	s := &Server{
		addr: DefaultAddr,
		slot: NewSlot(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the gin router serving the redirect route.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/", s.handleRedirect)
	return router
}

func (s *Server) handleRedirect(c *gin.Context) {
	if code := c.Query("code"); code != "" {
		if s.slot.Fulfil(code) {
			slog.Debug("Authorization code received", "remote", c.ClientIP())
		} else {
			slog.Debug("Ignoring redirect, code already captured", "remote", c.ClientIP())
		}
	} else {
		slog.Debug("Ignoring redirect without code", "remote", c.ClientIP(), "query", c.Request.URL.RawQuery)
	}
	c.String(http.StatusOK, SuccessPage)
}

// Start binds the listen address and begins serving in the background.
// A bind failure is returned as *core.BindError.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return &core.BindError{Addr: s.addr, Err: err}
	}

	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.serveErr = make(chan error, 1)

	go func() {
		s.serveErr <- s.srv.Serve(ln)
	}()

	slog.Debug("Redirect listener started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// AwaitCode blocks until the first code arrives, the server stops, or ctx is
// done. Whichever happens first decides the result; the listener is shut
// down afterwards.
func (s *Server) AwaitCode(ctx context.Context) (string, error) {
	s.mu.Lock()
	srv, serveErr := s.srv, s.serveErr
	s.mu.Unlock()

	if srv == nil {
		return "", ErrNotStarted
	}
	defer s.shutdown(srv)

	select {
	case code := <-s.slot.Done():
		return code, nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return "", ErrServerClosed
		}
		return "", fmt.Errorf("%w: %v", ErrServerClosed, err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the listener without waiting for a code.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Close()
}

func (s *Server) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("Redirect listener shutdown", "err", err)
	}
}
