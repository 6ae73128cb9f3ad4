package main

import (
	"context"
	"testing"

	"github.com/go-training/mtd-vat/pkg/core"
	"github.com/go-training/mtd-vat/pkg/store"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	var opts options
	_, err := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash).ParseArgs([]string{"-t", "http", "--vrn", "123", "--store", "memory"})
	require.NoError(t, err)
	assert.Equal(t, "http", opts.Transport)
	assert.Equal(t, ":8080", opts.Addr)
	assert.Equal(t, "123", opts.VRN)
	assert.Equal(t, "memory", opts.Store)

	_, err = flags.NewParser(&options{}, flags.HelpFlag|flags.PassDoubleDash).ParseArgs([]string{"-t", "sse"})
	assert.Error(t, err)
}

func TestMCPServer_WithAccount(t *testing.T) {
	tokens := store.NewMemoryStore()
	s := NewMCPServer("http://localhost:0", tokens, "default")

	ctx := s.withAccount(context.Background(), "")
	account, err := core.AccountFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", account)
	assert.NotEmpty(t, core.RequestIDFromCtx(ctx))

	got, err := core.StoreFromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, tokens, got)

	ctx = s.withAccount(context.Background(), "other")
	account, err = core.AccountFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "other", account)
}
