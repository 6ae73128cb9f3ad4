package core

import "context"

// ClientCredentials identify the registered application to the identity
// provider. They are supplied by the caller and never persisted.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// Token is the access token returned by the token endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
}

// Valid reports whether t carries a non-empty access token.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// TokenStore persists a Token per account identifier.
//
// Read returns (nil, nil) when nothing is stored for key.
type TokenStore interface {
	Write(ctx context.Context, key string, token *Token) error
	Read(ctx context.Context, key string) (*Token, error)
}
