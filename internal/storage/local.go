package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local stores files in a directory of an afero filesystem.
type Local struct {
	fs  afero.Fs
	dir string
}

func NewLocal(fs afero.Fs, dir string) (*Local, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = "uploads"
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}

	return &Local{fs: fs, dir: dir}, nil
}

func (l *Local) Save(_ context.Context, name string, data []byte) (string, error) {
	key, err := objectKey(name)
	if err != nil {
		return "", err
	}

	if err := afero.WriteFile(l.fs, filepath.Join(l.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}

	return key, nil
}

func (l *Local) Load(_ context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(l.fs, filepath.Join(l.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return data, nil
}
