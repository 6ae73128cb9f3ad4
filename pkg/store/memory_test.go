package store

import (
	"context"
	"sync"
	"testing"

	"github.com/go-training/mtd-vat/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	token, err := s.Read(ctx, "vrn")
	require.NoError(t, err)
	assert.Nil(t, token)

	original := &core.Token{AccessToken: "abc"}
	require.NoError(t, s.Write(ctx, "vrn", original))
	original.AccessToken = "mutated"

	token, err = s.Read(ctx, "vrn")
	require.NoError(t, err)
	assert.Equal(t, "abc", token.AccessToken)
}

func TestMemoryStore_Validation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	assert.ErrorIs(t, s.Write(ctx, "", &core.Token{}), ErrEmptyKey)
	assert.ErrorIs(t, s.Write(ctx, "vrn", nil), ErrNilToken)
	_, err := s.Read(ctx, "a/b")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestMemoryStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Write(ctx, "vrn", &core.Token{AccessToken: "t"})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Read(ctx, "vrn")
		}()
	}
	wg.Wait()

	token, err := s.Read(ctx, "vrn")
	require.NoError(t, err)
	assert.Equal(t, "t", token.AccessToken)
}
