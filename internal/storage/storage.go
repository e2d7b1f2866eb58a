// Package storage keeps the original résumé files next to the analysed profiles.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const keyTimeLayout = "20060102150405-"

// ErrNotFound is returned by Load for unknown keys.
var ErrNotFound = errors.New("stored file not found")

// Storage persists uploaded files under generated keys.
type Storage interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Load(ctx context.Context, key string) ([]byte, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend string   `mapstructure:"backend"`
	Dir     string   `mapstructure:"dir"`
	S3      S3Config `mapstructure:"s3"`
}

var now = time.Now

// objectKey prefixes the base name of the upload with the current timestamp.
func objectKey(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(strings.ReplaceAll(name, "\\", "/")))
	if base == "" || base == "." || base == "/" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return now().Format(keyTimeLayout) + base, nil
}

func validKey(key string) error {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
