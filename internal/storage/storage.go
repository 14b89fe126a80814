package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
)

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// SaveOptions controls where an object lands. Category groups objects and
// Extension is the preferred file extension without the leading dot.
type SaveOptions struct {
	Category  string
	Extension string
	BaseName  string
}

// Storage persists a blob and returns a backend specific key.
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
}

// New builds the backend selected by cfg.Type.
func New(cfg internal.StorageConfig) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", TypeLocal:
		return NewLocalStorage(cfg.LocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
