package repository

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// KV is the persistence port for small quiz state: the daily attempt counter
// and the question rotation offset. Implementations live in internal/storage
// (in-memory) and internal/infra/postgres/repository.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Namespaced wraps a KV and prefixes every key, so per-chat sessions can
// share one store while the quiz core keeps its plain key names.
type Namespaced struct {
	prefix string
	next   KV
}

// Namespace returns a view of kv with all keys prefixed.
func Namespace(kv KV, prefix string) *Namespaced {
	return &Namespaced{prefix: prefix, next: kv}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.next.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.next.Set(ctx, n.prefix+key, value)
}
