package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
)

// Fetch downloads a single file (config or triangulation table) from any
// go-getter source, e.g. an https URL, an s3:: address or a local path, to dst.
func Fetch(ctx context.Context, src, dst string) error {
	if err := getter.GetFile(dst, src, getter.WithContext(ctx)); err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	return nil
}

// Resolve returns the config the commands run with. A non-empty src is
// fetched to path first (a temporary file when path is empty); an empty
// path and src give Default.
func Resolve(ctx context.Context, path, src string) (Config, error) {
	if src != "" {
		if path == "" {
			dir, err := os.MkdirTemp("", "terrain-config")
			if err != nil {
				return Config{}, err
			}
			defer os.RemoveAll(dir)
			path = filepath.Join(dir, "terrain.yaml")
		}
		if err := Fetch(ctx, src, path); err != nil {
			return Config{}, err
		}
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
