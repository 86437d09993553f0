// Package cloud turns the storage keys that generated media comes back with
// into URLs the preview player can fetch, and uploads exports.
package cloud

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrNoStorage = errors.New("no storage backend configured")
	ErrEmptyKey  = errors.New("storage key is empty")
)

type Resolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Storage is a backend that can do both.
type Storage interface {
	Resolver
	Uploader
	Name() string
}

// NoStorage is used when no backend is configured.
type NoStorage struct{}

func (NoStorage) Name() string { return "none" }

func (NoStorage) Resolve(context.Context, string) (string, error) { return "", ErrNoStorage }

func (NoStorage) Upload(context.Context, string, io.Reader, string) error { return ErrNoStorage }

// cleanKey strips leading slashes so keys join cleanly onto a prefix.
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
