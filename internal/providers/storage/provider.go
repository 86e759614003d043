package storage

import (
	"context"
	"io"
)

// Provider stores uploaded assets (event images) outside the database.
type Provider interface {
	Put(ctx context.Context, key string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Put(ctx context.Context, key string, body io.Reader) (string, error) {
	return "", nil
}

func (p *NoOpProvider) Delete(ctx context.Context, key string) error {
	return nil
}
