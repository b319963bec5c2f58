package io

import (
	"context"
	"os"

	"github.com/OFFIS-RIT/lecturemap/pkg/loader"
)

// IOFileLoader loads files directly from the local filesystem with caching.
type IOFileLoader struct {
	cache *loader.Cache
}

// NewIOFileLoader creates a new filesystem-based file loader.
func NewIOFileLoader() *IOFileLoader {
	return &IOFileLoader{cache: loader.NewCache()}
}

// Load reads the file content from the filesystem. Results are cached.
func (l *IOFileLoader) Load(ctx context.Context, path string) ([]byte, error) {
	return l.cache.Get(path, func() ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	})
}

func (l *IOFileLoader) Evict(path string) {
	l.cache.Evict(path)
}

var (
	_ loader.FileLoader = (*IOFileLoader)(nil)
	_ loader.Evicter    = (*IOFileLoader)(nil)
)
