package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"files-manager-api/internal/application/ports"
	domain "files-manager-api/internal/domain/file"
	"files-manager-api/internal/infrastructure/blob"
	"files-manager-api/internal/infrastructure/raster"
	"files-manager-api/pkg/rmqconsumer"
)

var (
	ErrNoContent = errors.New("node has no content")
	ErrNotImage  = errors.New("content is not a supported image")
)

type ThumbnailService struct {
	fileRepository domain.Repository
	blobs          ports.BlobStore
	parser         ports.JobParser
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

func NewThumbnailService(
	fileRepository domain.Repository,
	blobs ports.BlobStore,
	parser ports.JobParser,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) *ThumbnailService {
	return &ThumbnailService{
		fileRepository: fileRepository,
		blobs:          blobs,
		parser:         parser,
		logger:         logger,
		mCounter:       mCounter,
	}
}

// HandleMessage is the queue entry point. Failures that a retry cannot fix
// are marked permanent so the consumer drops them.
func (ts *ThumbnailService) HandleMessage(ctx context.Context, body []byte) error {
	job, err := ts.parser.ParseJob(string(body))
	if err != nil {
		ts.mCounter.WithLabelValues("job_rejected_total").Inc()
		return rmqconsumer.Permanent(err)
	}

	return ts.Generate(ctx, job)
}

// Generate writes every configured width or fails as a whole. Rerunning it
// overwrites the same derivative keys with identical bytes.
func (ts *ThumbnailService) Generate(ctx context.Context, job domain.Job) error {
	log := ts.logger.With(zap.Int64("file_id", int64(job.FileID)), zap.Int64("user_id", int64(job.UserID)))

	n, err := ts.fileRepository.FetchOwnedNode(ctx, job.FileID, job.UserID)
	if err != nil {
		return fmt.Errorf("fetch node: %w", err)
	}
	if n == nil {
		return rmqconsumer.Permanent(fmt.Errorf("file %d of user %d: %w", job.FileID, job.UserID, ErrNotFound))
	}
	if !n.Type.HasContent() {
		return rmqconsumer.Permanent(fmt.Errorf("file %d: %w", n.ID, ErrNoContent))
	}

	data, err := ts.readPrimary(ctx, n.LocalPath)
	if err != nil {
		return err
	}

	// plain files are only thumbnail candidates; undecodable images are retried
	src, err := raster.Decode(data)
	switch {
	case errors.Is(err, raster.ErrTooLarge):
		ts.mCounter.WithLabelValues("job_rejected_total").Inc()
		return rmqconsumer.Permanent(fmt.Errorf("decode %s: %w", n.LocalPath, err))
	case err != nil && n.Type == domain.TypeFile:
		log.Info("plain file is not an image, no thumbnails", zap.Error(err))
		return rmqconsumer.Permanent(fmt.Errorf("file %d: %w: %v", n.ID, ErrNotImage, err))
	case err != nil:
		return fmt.Errorf("decode %s: %w", n.LocalPath, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range domain.ThumbnailWidths {
		w := w
		g.Go(func() error {
			out, err := src.Thumbnail(w)
			if err != nil {
				return fmt.Errorf("resize %d: %w", w, err)
			}
			if err = ts.blobs.Put(gctx, domain.DerivativeKey(n.LocalPath, w), bytes.NewReader(out)); err != nil {
				return fmt.Errorf("store %d: %w", w, err)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	if _, err = ts.fileRepository.TransitionStatus(
		ctx,
		n.ID,
		domain.StatusDerived,
		domain.StatusPersisted,
		domain.StatusQueued,
	); err != nil {
		return fmt.Errorf("mark derived: %w", err)
	}

	ts.mCounter.WithLabelValues("thumbnails_generated_total").Inc()
	log.Info("thumbnails generated", zap.Ints("widths", domain.ThumbnailWidths))

	return nil
}

func (ts *ThumbnailService) readPrimary(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := ts.blobs.Open(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, rmqconsumer.Permanent(fmt.Errorf("primary %s: %w", key, err))
		}
		return nil, fmt.Errorf("open primary: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxDataSize+1))
	if err != nil {
		return nil, fmt.Errorf("read primary: %w", err)
	}

	return data, nil
}
