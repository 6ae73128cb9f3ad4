package sandbox

import (
	"net/http"
	"strings"

	"github.com/go-training/mtd-vat/pkg/fraud"

	"github.com/gin-gonic/gin"
)

const (
	acceptHeader = "application/vnd.hmrc.1.0+json"
	tokenCtxKey  = "sandbox.token"
)

func apiError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}

// bearerMiddleware rejects requests without a known bearer token.
func (s *Server) bearerMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		apiError(c, http.StatusUnauthorized, "MISSING_CREDENTIALS", "Authentication information is not provided")
		return
	}
	if !s.validToken(token) {
		apiError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid Authentication information provided")
		return
	}
	c.Set(tokenCtxKey, token)
	c.Next()
}

// acceptMiddleware requires the versioned HMRC media type.
func acceptMiddleware(c *gin.Context) {
	if c.GetHeader("Accept") != acceptHeader {
		apiError(c, http.StatusNotAcceptable, "ACCEPT_HEADER_INVALID", "The accept header is missing or invalid")
		return
	}
	c.Next()
}

// fraudHeadersMiddleware requires every fraud-prevention header to be present.
func fraudHeadersMiddleware(c *gin.Context) {
	var missing []string
	for _, name := range fraud.HeaderNames {
		if c.GetHeader(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		apiError(c, http.StatusBadRequest, "INVALID_HEADER", "Missing fraud prevention headers: "+strings.Join(missing, ", "))
		return
	}
	c.Next()
}
