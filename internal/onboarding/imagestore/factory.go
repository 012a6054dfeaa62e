package imagestore

import (
	"context"
	"fmt"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

// Config selects and configures the image store driver
type Config struct {
	Driver   string
	LocalDir string
	S3       S3Config
}

// New builds the store named by cfg.Driver ("local" or "s3")
func New(ctx context.Context, cfg Config) (domain.ImageStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir), nil

	case "s3":
		if cfg.S3.Region == "" || cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("S3 config missing: S3_REGION, S3_BUCKET required")
		}
		return NewS3(ctx, cfg.S3)

	default:
		return nil, fmt.Errorf("unknown IMAGE_STORE_DRIVER: %s", cfg.Driver)
	}
}
