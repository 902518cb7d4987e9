// Package storage keeps the durable per-browser key-value entries the frontend
// writes session tokens into. Each browser session gets its own namespace.
package storage

import (
	"context"

	apperrors "github.com/jrsteele09/go-qa-web/internal/errors"
)

// Fixed keys for the session tokens
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// ErrNotFound is returned by GetItem when the key has never been set or was removed
var ErrNotFound = apperrors.ErrNotFound

// Repo stores plain string values grouped by namespace
type Repo interface {
	SetItem(ctx context.Context, namespace, key, value string) error
	GetItem(ctx context.Context, namespace, key string) (string, error)
	RemoveItem(ctx context.Context, namespace, key string) error
}

// KeyValue is a Repo bound to a single namespace
type KeyValue interface {
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (string, error)
	RemoveItem(ctx context.Context, key string) error
}

type scoped struct {
	repo      Repo
	namespace string
}

// Scoped binds repo to namespace
func Scoped(repo Repo, namespace string) KeyValue {
	return scoped{repo: repo, namespace: namespace}
}

func (s scoped) SetItem(ctx context.Context, key, value string) error {
	return s.repo.SetItem(ctx, s.namespace, key, value)
}

func (s scoped) GetItem(ctx context.Context, key string) (string, error) {
	return s.repo.GetItem(ctx, s.namespace, key)
}

func (s scoped) RemoveItem(ctx context.Context, key string) error {
	return s.repo.RemoveItem(ctx, s.namespace, key)
}
