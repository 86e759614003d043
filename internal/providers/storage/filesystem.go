package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemProvider keeps assets under a local directory. Keys map to file
// paths relative to the root; the returned URL is served by the HTTP layer
// under /storage/.
type FilesystemProvider struct {
	root string
}

func NewFilesystem(root string) (*FilesystemProvider, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemProvider{root: root}, nil
}

func (p *FilesystemProvider) Put(ctx context.Context, key string, body io.Reader) (string, error) {
	_ = ctx
	path, ok := p.resolve(key)
	if !ok {
		return "", os.ErrInvalid
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", err
	}
	return "/storage/" + key, nil
}

func (p *FilesystemProvider) Delete(ctx context.Context, key string) error {
	_ = ctx
	path, ok := p.resolve(key)
	if !ok {
		return os.ErrInvalid
	}

	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// resolve rejects keys that would escape the storage root.
func (p *FilesystemProvider) resolve(key string) (string, bool) {
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	if clean == "/" || clean == "." {
		return "", false
	}
	return filepath.Join(p.root, clean), true
}
