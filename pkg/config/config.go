// Package config merges command-line flags, environment variables and an
// optional YAML file into the settings used by the mtd-vat programs.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-training/mtd-vat/pkg/auth"
	"github.com/go-training/mtd-vat/pkg/core"
	"github.com/go-training/mtd-vat/pkg/logger"
	"github.com/go-training/mtd-vat/pkg/store"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingVRN         = errors.New("missing VAT registration number")
	ErrMissingCredentials = errors.New("missing client id or client secret")
)

// Options are the command-line flags. Environment variables fill in flags
// that were not given.
type Options struct {
	Config       string        `short:"f" long:"config" env:"MTD_VAT_CONFIG" description:"YAML config path"`
	VRN          string        `long:"vrn" env:"VRN" description:"VAT registration number"`
	ClientID     string        `long:"client-id" env:"CLIENT_ID" description:"HMRC application client id"`
	ClientSecret string        `long:"client-secret" env:"CLIENT_SECRET" description:"HMRC application client secret"`
	AccessToken  string        `long:"access-token" env:"ACCESS_TOKEN" description:"use this access token instead of the cache or a new authorization"`
	Reauth       bool          `long:"reauth" description:"ignore the cached token and authorize again"`
	Sandbox      bool          `long:"sandbox" description:"use the HMRC sandbox endpoints"`
	WWWBase      string        `long:"www-base" description:"override the browser-facing base URL"`
	APIBase      string        `long:"api-base" description:"override the API base URL"`
	Store        string        `long:"store" choice:"file" choice:"memory" choice:"redis" description:"token cache backend"`
	CacheDir     string        `long:"cache-dir" description:"file token cache directory"`
	RedisAddr    string        `long:"redis-addr" env:"REDIS_ADDR" description:"redis address for the redis token cache"`
	AuthTimeout  time.Duration `long:"auth-timeout" description:"give up waiting for the browser redirect after this long (0 waits forever)"`
	LogLevel     string        `long:"log-level" env:"LOG_LEVEL" description:"DEBUG, INFO, WARN or ERROR"`
	Version      bool          `short:"v" long:"version" description:"print the version and exit"`
}

// File is the YAML config file layout.
type File struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	VRN          string        `yaml:"vrn"`
	Sandbox      bool          `yaml:"sandbox"`
	WWWBase      string        `yaml:"www_base"`
	APIBase      string        `yaml:"api_base"`
	Store        store.Config  `yaml:"store"`
	AuthTimeout  time.Duration `yaml:"auth_timeout"`
	LogLevel     string        `yaml:"log_level"`
}

// Config is the resolved configuration. LogLevel is a normalised slog level
// name such as "INFO".
type Config struct {
	Credentials core.ClientCredentials
	VRN         string
	AccessToken string
	Reauth      bool
	Endpoints   auth.Endpoints
	Store       store.Config
	AuthTimeout time.Duration
	LogLevel    string
}

// Parse parses args into Options and returns the remaining arguments.
func Parse(args []string) (*Options, []string, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}
	return opts, rest, nil
}

// IsHelp reports whether err is the go-flags help request.
func IsHelp(err error) bool {
	var fe *flags.Error
	return errors.As(err, &fe) && fe.Type == flags.ErrHelp
}

// Load reads a YAML config file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &core.DecodeError{Source: path, Err: err}
	}
	return &f, nil
}

// Resolve loads opts.Config when set and lets non-zero flags override the
// file.
func Resolve(opts *Options) (*Config, error) {
	f := &File{}
	if opts.Config != "" {
		var err error
		if f, err = Load(opts.Config); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Credentials: core.ClientCredentials{
			ClientID:     pick(opts.ClientID, f.ClientID),
			ClientSecret: pick(opts.ClientSecret, f.ClientSecret),
		},
		VRN:         pick(opts.VRN, f.VRN),
		AccessToken: opts.AccessToken,
		Reauth:      opts.Reauth,
		Store:       f.Store,
		AuthTimeout: f.AuthTimeout,
		LogLevel:    slog.LevelInfo.String(),
	}

	endpoints := auth.Production
	if opts.Sandbox || f.Sandbox {
		endpoints = auth.Sandbox
	}
	endpoints.WWW = pick(opts.WWWBase, pick(f.WWWBase, endpoints.WWW))
	endpoints.API = pick(opts.APIBase, pick(f.APIBase, endpoints.API))
	cfg.Endpoints = endpoints

	if opts.Store != "" {
		cfg.Store.Type = store.ParseStoreType(opts.Store)
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = store.StoreTypeFile
	}
	if !cfg.Store.Type.IsValid() {
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Store.Type)
	}
	cfg.Store.Dir = pick(opts.CacheDir, cfg.Store.Dir)
	cfg.Store.Redis.Addr = pick(opts.RedisAddr, cfg.Store.Redis.Addr)

	if opts.AuthTimeout != 0 {
		cfg.AuthTimeout = opts.AuthTimeout
	}
	if cfg.AuthTimeout < 0 {
		return nil, fmt.Errorf("auth timeout must not be negative: %s", cfg.AuthTimeout)
	}

	if level := pick(opts.LogLevel, f.LogLevel); level != "" {
		l, ok := logger.ParseLevel(level)
		if !ok {
			return nil, fmt.Errorf("invalid log level: %s", level)
		}
		cfg.LogLevel = l.String()
	}

	return cfg, nil
}

// Validate checks the settings needed to act for a VAT registration.
// Credentials are optional when an access token is supplied.
func (c *Config) Validate() error {
	if c.VRN == "" {
		return ErrMissingVRN
	}
	if c.AccessToken == "" && (c.Credentials.ClientID == "" || c.Credentials.ClientSecret == "") {
		return ErrMissingCredentials
	}
	return nil
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
