package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-training/mtd-vat/pkg/auth"
	"github.com/go-training/mtd-vat/pkg/core"
	"github.com/go-training/mtd-vat/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MTD_VAT_CONFIG", "VRN", "CLIENT_ID", "CLIENT_SECRET", "ACCESS_TOKEN", "REDIS_ADDR", "LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mtd-vat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse(t *testing.T) {
	clearEnv(t)

	opts, rest, err := Parse([]string{"--vrn", "123", "--sandbox", "--auth-timeout", "2m", "--store", "memory", "extra"})
	require.NoError(t, err)
	assert.Equal(t, "123", opts.VRN)
	assert.True(t, opts.Sandbox)
	assert.Equal(t, 2*time.Minute, opts.AuthTimeout)
	assert.Equal(t, "memory", opts.Store)
	assert.Equal(t, []string{"extra"}, rest)
}

func TestParse_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLIENT_ID", "env-id")
	t.Setenv("CLIENT_SECRET", "env-secret")
	t.Setenv("VRN", "999")

	opts, _, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "env-id", opts.ClientID)
	assert.Equal(t, "env-secret", opts.ClientSecret)
	assert.Equal(t, "999", opts.VRN)

	opts, _, err = Parse([]string{"--client-id", "flag-id"})
	require.NoError(t, err)
	assert.Equal(t, "flag-id", opts.ClientID)
}

func TestParse_Errors(t *testing.T) {
	clearEnv(t)

	_, _, err := Parse([]string{"--help"})
	require.Error(t, err)
	assert.True(t, IsHelp(err))

	_, _, err = Parse([]string{"--store", "sqlite"})
	require.Error(t, err)
	assert.False(t, IsHelp(err))

	_, _, err = Parse([]string{"--no-such-flag"})
	require.Error(t, err)
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(&Options{})
	require.NoError(t, err)
	assert.Equal(t, auth.Production, cfg.Endpoints)
	assert.Equal(t, store.StoreTypeFile, cfg.Store.Type)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Zero(t, cfg.AuthTimeout)
}

func TestResolve_FileAndOverrides(t *testing.T) {
	path := writeConfig(t, `
client_id: file-id
client_secret: file-secret
vrn: "111"
sandbox: true
store:
  type: redis
  redis:
    addr: localhost:6379
auth_timeout: 5m
log_level: debug
`)

	cfg, err := Resolve(&Options{Config: path})
	require.NoError(t, err)
	assert.Equal(t, core.ClientCredentials{ClientID: "file-id", ClientSecret: "file-secret"}, cfg.Credentials)
	assert.Equal(t, "111", cfg.VRN)
	assert.Equal(t, auth.Sandbox, cfg.Endpoints)
	assert.Equal(t, store.StoreTypeRedis, cfg.Store.Type)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.AuthTimeout)
	assert.Equal(t, "DEBUG", cfg.LogLevel)

	cfg, err = Resolve(&Options{
		Config:      path,
		ClientID:    "flag-id",
		VRN:         "222",
		Store:       "file",
		CacheDir:    "/tmp/cache",
		APIBase:     "http://localhost:8095",
		AuthTimeout: time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, "flag-id", cfg.Credentials.ClientID)
	assert.Equal(t, "file-secret", cfg.Credentials.ClientSecret)
	assert.Equal(t, "222", cfg.VRN)
	assert.Equal(t, store.StoreTypeFile, cfg.Store.Type)
	assert.Equal(t, "/tmp/cache", cfg.Store.Dir)
	assert.Equal(t, auth.Sandbox.WWW, cfg.Endpoints.WWW)
	assert.Equal(t, "http://localhost:8095", cfg.Endpoints.API)
	assert.Equal(t, time.Minute, cfg.AuthTimeout)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts func(t *testing.T) *Options
	}{
		{"missing file", func(t *testing.T) *Options {
			return &Options{Config: filepath.Join(t.TempDir(), "nope.yaml")}
		}},
		{"bad yaml", func(t *testing.T) *Options {
			return &Options{Config: writeConfig(t, "client_id: [")}
		}},
		{"bad store", func(t *testing.T) *Options {
			return &Options{Config: writeConfig(t, "store:\n  type: sqlite\n")}
		}},
		{"bad log level", func(t *testing.T) *Options {
			return &Options{LogLevel: "loud"}
		}},
		{"negative timeout", func(t *testing.T) *Options {
			return &Options{AuthTimeout: -time.Second}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.opts(t))
			require.Error(t, err)
		})
	}
}

func TestLoad_DecodeError(t *testing.T) {
	_, err := Load(writeConfig(t, "vrn: [1, 2"))
	var de *core.DecodeError
	require.True(t, errors.As(err, &de))
}

func TestValidate(t *testing.T) {
	creds := core.ClientCredentials{ClientID: "id", ClientSecret: "secret"}
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"ok", Config{VRN: "1", Credentials: creds}, nil},
		{"token without credentials", Config{VRN: "1", AccessToken: "tok"}, nil},
		{"no vrn", Config{Credentials: creds}, ErrMissingVRN},
		{"no secret", Config{VRN: "1", Credentials: core.ClientCredentials{ClientID: "id"}}, ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), tt.want)
		})
	}
}
