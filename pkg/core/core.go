package core

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// RequestIDKey is a custom context key type for storing the request ID in context.
type RequestIDKey struct{}

// StoreKey is a custom context key type for storing the TokenStore in context.
type StoreKey struct{}

// AccountKey is a custom context key type for storing the account identifier in context.
type AccountKey struct{}

// WithRequestID returns a new context with a generated request ID set.
func WithRequestID(ctx context.Context) context.Context {
	reqID := uuid.New().String()
	return context.WithValue(ctx, RequestIDKey{}, reqID)
}

// RequestIDFromCtx returns the request ID stored in ctx, or an empty string.
func RequestIDFromCtx(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey{}).(string)
	return reqID
}

// LoggerFromCtx returns a slog.Logger with request_id field if present in context.
// If no request ID is found, it returns the default logger.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if reqID := RequestIDFromCtx(ctx); reqID != "" {
		return slog.Default().With("request_id", reqID)
	}
	return slog.Default()
}

// WithStore returns a new context with the provided TokenStore set.
func WithStore(ctx context.Context, store TokenStore) context.Context {
	return context.WithValue(ctx, StoreKey{}, store)
}

// StoreFromContext retrieves the TokenStore from the context.
func StoreFromContext(ctx context.Context) (TokenStore, error) {
	store, ok := ctx.Value(StoreKey{}).(TokenStore)
	if !ok {
		return nil, ErrMissingStore
	}
	return store, nil
}

// WithAccount returns a new context carrying the account identifier (the VRN).
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, AccountKey{}, account)
}

// AccountFromContext retrieves the account identifier from the context.
func AccountFromContext(ctx context.Context) (string, error) {
	account, ok := ctx.Value(AccountKey{}).(string)
	if !ok || account == "" {
		return "", ErrMissingAccount
	}
	return account, nil
}

// TokenFromContext reads the cached token for the account in ctx from the
// store in ctx. It returns ErrMissingToken when nothing is cached.
func TokenFromContext(ctx context.Context) (*Token, string, error) {
	store, err := StoreFromContext(ctx)
	if err != nil {
		return nil, "", err
	}
	account, err := AccountFromContext(ctx)
	if err != nil {
		return nil, "", err
	}
	token, err := store.Read(ctx, account)
	if err != nil {
		return nil, account, err
	}
	if !token.Valid() {
		return nil, account, ErrMissingToken
	}
	return token, account, nil
}
