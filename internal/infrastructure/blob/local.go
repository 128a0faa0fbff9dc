package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const tmpPattern = ".upload-*"

// Local keeps blobs as flat files under root.
type Local struct {
	root   string
	logger *zap.Logger
}

func NewLocal(root string, logger *zap.Logger) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Local{root: root, logger: logger}, nil
}

// Put writes to a temp file in the same directory, fsyncs and renames it over
// the final name, so readers see either nothing, the old blob, or the whole new one.
func (l *Local) Put(ctx context.Context, key string, r io.Reader) (err error) {
	if err = validateKey(key); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.root, tmpPattern)
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				l.logger.Warn("failed to remove temp blob", zap.String("path", tmp.Name()), zap.Error(rmErr))
			}
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync blob: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close blob: %w", err)
	}
	if err = os.Rename(tmp.Name(), l.path(key)); err != nil {
		return fmt.Errorf("rename blob: %w", err)
	}

	return nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	if err := validateKey(key); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("open blob: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat blob: %w", err)
	}

	return f, st.Size(), nil
}

func (l *Local) path(key string) string { return filepath.Join(l.root, key) }
