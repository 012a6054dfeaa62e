package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

// Local stages images on the service's disk
type Local struct {
	BaseDir string
}

func NewLocal(baseDir string) *Local {
	return &Local{BaseDir: baseDir}
}

func (l *Local) Put(ctx context.Context, r io.Reader, ref domain.ImageRef) (domain.ImageRef, error) {
	_ = ctx

	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return domain.ImageRef{}, err
	}

	ref.Key = uuid.NewString() + safeExt(ref.Filename)
	f, err := os.OpenFile(filepath.Join(l.BaseDir, ref.Key), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return domain.ImageRef{}, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return domain.ImageRef{}, err
	}
	ref.Size = n
	return ref, nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	_ = ctx
	return os.Open(filepath.Join(l.BaseDir, filepath.Base(key)))
}

func (l *Local) Delete(ctx context.Context, key string) error {
	_ = ctx
	return os.Remove(filepath.Join(l.BaseDir, filepath.Base(key)))
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return ext
	default:
		return ""
	}
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
