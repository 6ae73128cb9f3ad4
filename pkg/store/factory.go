package store

import (
	"fmt"
	"strings"

	"github.com/go-training/mtd-vat/pkg/core"
)

// StoreType represents the type of store backend.
type StoreType string

const (
	// StoreTypeFile represents one JSON file per account in the user cache directory.
	StoreTypeFile StoreType = "file"
	// StoreTypeMemory represents in-memory storage.
	StoreTypeMemory StoreType = "memory"
	// StoreTypeRedis represents Redis storage.
	StoreTypeRedis StoreType = "redis"
)

// Config contains configuration for creating a store.
type Config struct {
	// Type specifies the store type (file, memory or redis).
	Type StoreType `yaml:"type"`
	// Dir overrides the file store directory. Empty means DefaultDir.
	Dir string `yaml:"dir"`
	// Redis contains Redis-specific configuration.
	Redis RedisOptions `yaml:"redis"`
}

// Factory creates store instances based on configuration.
type Factory struct {
	config Config
}

// NewFactory creates a new store factory with the provided configuration.
func NewFactory(config Config) *Factory {
	return &Factory{
		config: config,
	}
}

// Create creates and returns a new store instance based on the factory configuration.
func (f *Factory) Create() (core.TokenStore, error) {
	switch f.config.Type {
	case StoreTypeFile:
		dir := f.config.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		return NewFileStore(dir), nil
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		return NewRedisStoreFromOptions(f.config.Redis)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", f.config.Type)
	}
}

// NewStore is a convenience function that creates a store directly from configuration.
func NewStore(config Config) (core.TokenStore, error) {
	return NewFactory(config).Create()
}

// ParseStoreType parses a string into a StoreType.
// Returns StoreTypeFile for invalid inputs.
func ParseStoreType(s string) StoreType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "memory":
		return StoreTypeMemory
	case "redis":
		return StoreTypeRedis
	default:
		return StoreTypeFile
	}
}

// String returns the string representation of a StoreType.
func (t StoreType) String() string {
	return string(t)
}

// IsValid returns true if the StoreType is valid.
func (t StoreType) IsValid() bool {
	switch t {
	case StoreTypeFile, StoreTypeMemory, StoreTypeRedis:
		return true
	default:
		return false
	}
}

// Close releases backend resources held by s, if any.
func Close(s core.TokenStore) {
	if rs, ok := s.(*RedisStore); ok {
		rs.Close()
	}
}

// DefaultConfig returns the default store configuration (file store).
func DefaultConfig() Config {
	return Config{
		Type: StoreTypeFile,
	}
}
