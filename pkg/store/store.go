// Package store persists access tokens per account identifier.
package store

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyKey is returned when the account identifier is empty.
	ErrEmptyKey = errors.New("account identifier cannot be empty")
	// ErrInvalidKey is returned when the account identifier is not usable as a file name.
	ErrInvalidKey = errors.New("account identifier must be a single path element")
	// ErrNilToken is returned when attempting to save a nil token.
	ErrNilToken = errors.New("token cannot be nil")
)

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return ErrInvalidKey
	}
	return nil
}
