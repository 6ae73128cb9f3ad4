package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-training/mtd-vat/pkg/core"
)

const fileSuffix = ".access.json"

// FileStore keeps one JSON file per account under a cache directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultDir is the per-user cache directory for the application.
func DefaultDir() (string, error) {
	d, err := os.UserCacheDir()
	if err != nil {
		return "", &core.CacheError{Op: "locate", Err: err}
	}
	return filepath.Join(d, core.Product), nil
}

// Dir returns the cache directory.
func (f *FileStore) Dir() string {
	return f.dir
}

// Path returns the file holding the token for key.
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, key+fileSuffix)
}

// Write serializes token to <dir>/<key>.access.json, replacing any previous
// content. The file is written to a temporary name and renamed into place.
func (f *FileStore) Write(ctx context.Context, key string, token *core.Token) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if token == nil {
		return ErrNilToken
	}

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	path := f.Path(key)
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return &core.CacheError{Op: "write", Key: key, Path: f.dir, Err: err}
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return &core.CacheError{Op: "write", Key: key, Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &core.CacheError{Op: "write", Key: key, Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &core.CacheError{Op: "write", Key: key, Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &core.CacheError{Op: "write", Key: key, Path: path, Err: err}
	}

	core.LoggerFromCtx(ctx).Debug("Token cached", "path", path)
	return nil
}

// Read returns the cached token for key, or nil if none has been written.
// A file that is not valid JSON is a *core.DecodeError.
func (f *FileStore) Read(ctx context.Context, key string) (*core.Token, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	path := f.Path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.CacheError{Op: "read", Key: key, Path: path, Err: err}
	}

	var token core.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, &core.DecodeError{Source: path, Err: err}
	}
	return &token, nil
}
