// Package storage provides the per-visitor key-value slots the storefront
// keeps its durable visitor state in.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a flat byte store. Implementations must be safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Namespace scopes a KV to one visitor session.
type Namespace struct {
	kv     KV
	prefix string
}

// Scoped returns the namespace of sessionID inside kv.
func Scoped(kv KV, sessionID string) *Namespace {
	return &Namespace{kv: kv, prefix: "storefront:" + sessionID + ":"}
}

func (n *Namespace) Get(ctx context.Context, key string) ([]byte, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *Namespace) Set(ctx context.Context, key string, value []byte) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *Namespace) Delete(ctx context.Context, key string) error {
	return n.kv.Delete(ctx, n.prefix+key)
}

// expiry returns the absolute expiry for a ttl, or the zero time for none.
func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
