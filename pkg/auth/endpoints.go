package auth

import (
	"strings"

	"github.com/go-training/mtd-vat/pkg/core"

	"golang.org/x/oauth2"
)

const (
	// RedirectURL is registered with HMRC for the application and served by
	// the callback listener.
	RedirectURL = "http://localhost:54786/"

	authorizePath = "/oauth/authorize"
	tokenPath     = "/oauth/token"
)

// Scopes requested during consent.
var Scopes = []string{"read:vat", "write:vat"}

// Endpoints holds the two HMRC base URLs: the browser-facing site and the API.
type Endpoints struct {
	WWW string
	API string
}

var (
	// Production is the live HMRC service.
	Production = Endpoints{
		WWW: "https://www.tax.service.gov.uk",
		API: "https://api.service.hmrc.gov.uk",
	}
	// Sandbox is the HMRC developer sandbox.
	Sandbox = Endpoints{
		WWW: "https://test-www.tax.service.gov.uk",
		API: "https://test-api.service.hmrc.gov.uk",
	}
)

// AuthorizeURL is the consent page URL without query parameters.
func (e Endpoints) AuthorizeURL() string {
	return strings.TrimRight(e.WWW, "/") + authorizePath
}

// TokenURL is the token endpoint.
func (e Endpoints) TokenURL() string {
	return strings.TrimRight(e.API, "/") + tokenPath
}

// OAuth2Config builds the authorization-code configuration for creds.
func (e Endpoints) OAuth2Config(creds core.ClientCredentials, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   e.AuthorizeURL(),
			TokenURL:  e.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      Scopes,
	}
}
