package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingStore is returned when no TokenStore is attached to the context.
	ErrMissingStore = errors.New("missing token store")
	// ErrMissingAccount is returned when no account identifier is attached to the context.
	ErrMissingAccount = errors.New("missing account identifier")
	// ErrMissingToken is returned when no access token is available for an account.
	ErrMissingToken = errors.New("missing access token")
)

// BindError reports that the local redirect listener could not bind its address.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind redirect listener on %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// StatusError is a non-2xx HTTP response. The body is kept verbatim.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// DecodeError reports malformed JSON from the token endpoint, an API or a cache file.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CacheError is a filesystem or backend failure of a token cache operation.
type CacheError struct {
	Op   string // "read", "write"
	Key  string
	Path string
	Err  error
}

func (e *CacheError) Error() string {
	msg := e.Op + " cached token"
	if e.Key != "" {
		msg += " for " + e.Key
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	return msg + ": " + e.Err.Error()
}

func (e *CacheError) Unwrap() error { return e.Err }
