package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-training/mtd-vat/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "mtd-vat")
	s := NewFileStore(dir)

	require.NoError(t, s.Write(ctx, "123456789", &core.Token{AccessToken: "abc"}))

	token, err := s.Read(ctx, "123456789")
	require.NoError(t, err)
	assert.Equal(t, &core.Token{AccessToken: "abc"}, token)

	data, err := os.ReadFile(filepath.Join(dir, "123456789.access.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"abc"}`, string(data))
}

func TestFileStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Write(ctx, "vrn", &core.Token{AccessToken: "a-much-longer-first-token"}))
	require.NoError(t, s.Write(ctx, "vrn", &core.Token{AccessToken: "b"}))

	token, err := s.Read(ctx, "vrn")
	require.NoError(t, err)
	assert.Equal(t, "b", token.AccessToken)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_ReadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"))

	token, err := s.Read(context.Background(), "never-written")
	assert.NoError(t, err)
	assert.Nil(t, token)
}

func TestFileStore_ReadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, os.WriteFile(s.Path("broken"), []byte("{not json"), 0o600))

	token, err := s.Read(context.Background(), "broken")
	assert.Nil(t, token)

	var decodeErr *core.DecodeError
	require.True(t, errors.As(err, &decodeErr), "got %v", err)
	assert.Equal(t, s.Path("broken"), decodeErr.Source)
}

func TestFileStore_KeyValidation(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	tests := []struct {
		key     string
		wantErr error
	}{
		{"", ErrEmptyKey},
		{".", ErrInvalidKey},
		{"..", ErrInvalidKey},
		{"../escape", ErrInvalidKey},
		{`a\b`, ErrInvalidKey},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, s.Write(ctx, tt.key, &core.Token{AccessToken: "x"}), tt.wantErr, tt.key)
		_, err := s.Read(ctx, tt.key)
		assert.ErrorIs(t, err, tt.wantErr, tt.key)
	}

	assert.ErrorIs(t, s.Write(ctx, "ok", nil), ErrNilToken)
}

func TestFileStore_WriteDirFailure(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	s := NewFileStore(filepath.Join(blocker, "cache"))
	err := s.Write(context.Background(), "vrn", &core.Token{AccessToken: "x"})

	var cacheErr *core.CacheError
	require.True(t, errors.As(err, &cacheErr), "got %v", err)
	assert.Equal(t, "write", cacheErr.Op)
}

func TestFileStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Write(context.Background(), "vrn", &core.Token{AccessToken: "x"}))

	info, err := os.Stat(s.Path("vrn"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
