package storage

import (
	"context"
	"io"
	"time"

	"bookshelf/pkg/circuitbreaker"
)

// Guarded sends every call through a circuit breaker so a dead backend
// fails fast instead of stalling each request.
type Guarded struct {
	inner   FileStore
	breaker *circuitbreaker.CircuitBreaker
}

func NewGuarded(inner FileStore, breaker *circuitbreaker.CircuitBreaker) *Guarded {
	return &Guarded{inner: inner, breaker: breaker}
}

func (g *Guarded) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return g.breaker.Execute(func() error {
		return g.inner.Put(ctx, key, r, size, contentType)
	})
}

func (g *Guarded) Exists(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := g.breaker.Execute(func() error {
		var err error
		ok, err = g.inner.Exists(ctx, key)
		return err
	})
	return ok, err
}

func (g *Guarded) Delete(ctx context.Context, key string) error {
	return g.breaker.Execute(func() error {
		return g.inner.Delete(ctx, key)
	})
}

func (g *Guarded) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	var url string
	err := g.breaker.Execute(func() error {
		var err error
		url, err = g.inner.PresignGet(ctx, key, expiry)
		return err
	})
	return url, err
}
