package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// New builds the backend named in cfg. An empty backend means local.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "local":
		return NewLocal(afero.NewOsFs(), cfg.Dir)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
