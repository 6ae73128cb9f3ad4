// Package sandbox is a local stand-in for the HMRC authorization and VAT
// endpoints. Consent is granted automatically: /oauth/authorize redirects
// straight back to the redirect URI with a fresh code.
package sandbox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-training/mtd-vat/pkg/vat"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const tokenLifetime = 4 * time.Hour

type client struct {
	secret       string
	redirectURIs []string
}

type grant struct {
	clientID    string
	redirectURI string
	expiresAt   time.Time
}

// Server holds the sandbox state.
type Server struct {
	mu          sync.Mutex
	clients     map[string]client
	codes       map[string]grant
	tokens      map[string]time.Time
	obligations map[string][]vat.Obligation
	returns     map[string][]vat.Return
}

// New creates an empty sandbox.
func New() *Server {
	return &Server{
		clients:     make(map[string]client),
		codes:       make(map[string]grant),
		tokens:      make(map[string]time.Time),
		obligations: make(map[string][]vat.Obligation),
		returns:     make(map[string][]vat.Return),
	}
}

// RegisterClient adds an application. An empty redirect list accepts any URI.
func (s *Server) RegisterClient(id, secret string, redirectURIs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[id] = client{secret: secret, redirectURIs: redirectURIs}
}

// AddObligation records an obligation for vrn.
func (s *Server) AddObligation(vrn string, o vat.Obligation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obligations[vrn] = append(s.obligations[vrn], o)
}

// Returns lists the returns submitted for vrn.
func (s *Server) Returns(vrn string) []vat.Return {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]vat.Return(nil), s.returns[vrn]...)
}

// IssueToken creates a valid access token without going through consent.
func (s *Server) IssueToken() string {
	token := randomString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = time.Now().Add(tokenLifetime)
	return token
}

func (s *Server) validToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[token]
	return ok && time.Now().Before(exp)
}

// Handler returns the gin router serving all sandbox routes.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/oauth/authorize", s.handleAuthorize)
	router.POST("/oauth/token", s.handleToken)

	api := router.Group("/organisations/vat/:vrn", acceptMiddleware, s.bearerMiddleware, fraudHeadersMiddleware)
	api.GET("/obligations", s.handleObligations)
	api.POST("/returns", s.handleSubmitReturn)

	return router
}

func (s *Server) handleAuthorize(c *gin.Context) {
	clientID := c.Query("client_id")
	redirectURI := c.Query("redirect_uri")
	responseType := c.Query("response_type")
	scope := c.Query("scope")

	if clientID == "" || redirectURI == "" || responseType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id, redirect_uri, and response_type are required"})
		return
	}
	if responseType != "code" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_response_type"})
		return
	}

	s.mu.Lock()
	cl, ok := s.clients[clientID]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_client"})
		return
	}
	if !allowedRedirect(redirectURI, cl.redirectURIs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_redirect_uri"})
		return
	}

	target, err := url.Parse(redirectURI)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_redirect_uri"})
		return
	}

	code := randomString()
	s.mu.Lock()
	s.codes[code] = grant{clientID: clientID, redirectURI: redirectURI, expiresAt: time.Now().Add(10 * time.Minute)}
	s.mu.Unlock()

	slog.Debug("Sandbox consent granted", "client_id", clientID, "scope", scope)

	q := target.Query()
	q.Set("code", code)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

func (s *Server) handleToken(c *gin.Context) {
	grantType := c.PostForm("grant_type")
	code := c.PostForm("code")
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")
	redirectURI := c.PostForm("redirect_uri")

	if grantType != "authorization_code" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cl, ok := s.clients[clientID]
	if !ok || cl.secret != clientSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	g, ok := s.codes[code]
	// Codes are single use.
	delete(s.codes, code)
	if !ok || g.clientID != clientID || time.Now().After(g.expiresAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant", "error_description": "authorization code invalid"})
		return
	}
	if g.redirectURI != redirectURI {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant", "error_description": "redirect_uri mismatch"})
		return
	}

	token := randomString()
	s.tokens[token] = time.Now().Add(tokenLifetime)

	c.JSON(http.StatusOK, gin.H{
		"access_token":  token,
		"refresh_token": uuid.NewString(),
		"expires_in":    int(tokenLifetime.Seconds()),
		"scope":         "read:vat write:vat",
		"token_type":    "bearer",
	})
}

func (s *Server) handleObligations(c *gin.Context) {
	vrn := c.Param("vrn")
	status := c.Query("status")

	s.mu.Lock()
	all := s.obligations[vrn]
	out := make([]vat.Obligation, 0, len(all))
	for _, o := range all {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	s.mu.Unlock()

	if len(out) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "The requested resource could not be found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"obligations": out})
}

func (s *Server) handleSubmitReturn(c *gin.Context) {
	vrn := c.Param("vrn")

	var r vat.Return
	if err := c.ShouldBindJSON(&r); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if !r.Finalised {
		apiError(c, http.StatusForbidden, "NOT_FINALISED", "User has not declared VAT return as final")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, o := range s.obligations[vrn] {
		if o.PeriodKey == r.PeriodKey && o.Status == "O" {
			idx = i
			break
		}
	}
	if idx < 0 {
		apiError(c, http.StatusForbidden, "DUPLICATE_SUBMISSION", "The VAT return was already submitted for the given period")
		return
	}

	now := time.Now().UTC()
	s.obligations[vrn][idx].Status = "F"
	s.obligations[vrn][idx].Received = now.Format("2006-01-02")
	s.returns[vrn] = append(s.returns[vrn], r)

	c.JSON(http.StatusCreated, vat.Receipt{
		ProcessingDate:   now.Format(time.RFC3339),
		PaymentIndicator: "BANK",
		FormBundleNumber: uuid.NewString(),
	})
}

func allowedRedirect(redirectURI string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == redirectURI {
			return true
		}
	}
	return false
}

func randomString() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
