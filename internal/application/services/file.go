package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"files-manager-api/internal/application/ports"
	domain "files-manager-api/internal/domain/file"
	"files-manager-api/internal/domain/user"
	"files-manager-api/internal/infrastructure/blob"
)

const (
	// MaxDataSize caps the decoded payload of a single upload.
	MaxDataSize = 10 << 20

	defaultContentType = "application/octet-stream"
)

type FileService struct {
	fileRepository domain.Repository
	blobs          ports.BlobStore
	queue          ports.JobQueue
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
	newKey         func() string
	backoff        func() retry.Backoff
}

func NewFileService(
	fileRepository domain.Repository,
	blobs ports.BlobStore,
	queue ports.JobQueue,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.FileService {
	return &FileService{
		fileRepository: fileRepository,
		blobs:          blobs,
		queue:          queue,
		logger:         logger,
		mCounter:       mCounter,
		newKey:         blob.NewKey,
		backoff:        enqueueBackoff,
	}
}

func enqueueBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
}

// CreateNode validates everything before the first write: a rejected
// request leaves neither a blob nor a catalog row behind.
func (fs *FileService) CreateNode(ctx context.Context, requester user.ID, in domain.NewNode) (*domain.Node, error) {
	if requester == user.Anonymous {
		return nil, ErrUnauthorized
	}

	name := norm.NFC.String(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, invalid("name", KindMissing)
	}
	if in.Type == "" {
		return nil, invalid("type", KindMissing)
	}
	if !in.Type.Valid() {
		return nil, invalid("type", KindInvalid)
	}

	var data []byte
	if in.Type.HasContent() {
		var err error
		if data, err = decodeData(in.Data); err != nil {
			return nil, err
		}
	}

	if err := fs.checkParent(ctx, requester, in.ParentID); err != nil {
		return nil, err
	}

	node := &domain.Node{
		UserID:   requester,
		Name:     name,
		Type:     in.Type,
		IsPublic: in.IsPublic,
		ParentID: in.ParentID,
		Status:   domain.StatusCatalogued,
	}

	if in.Type == domain.TypeFolder {
		out, err := fs.fileRepository.CreateNode(ctx, node)
		if err != nil {
			return nil, fmt.Errorf("create folder: %w", err)
		}
		fs.mCounter.WithLabelValues("folders_created_total").Inc()
		return out, nil
	}

	key := fs.newKey()
	if err := fs.blobs.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	node.LocalPath = key
	node.Status = domain.StatusPersisted
	out, err := fs.fileRepository.CreateNode(ctx, node)
	if err != nil {
		fs.logger.Warn("catalog insert failed, blob orphaned", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("create node: %w", err)
	}

	fs.mCounter.WithLabelValues("files_created_total").Inc()

	// the blob and row are durable; a client disconnect must not abort the hand-off
	fs.enqueue(context.WithoutCancel(ctx), out)

	return out, nil
}

func decodeData(data string) ([]byte, error) {
	if data == "" {
		return nil, invalid("data", KindMissing)
	}
	if len(data) > base64.StdEncoding.EncodedLen(MaxDataSize) {
		return nil, invalid("data", KindTooLarge)
	}

	out, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		if out, err = base64.RawStdEncoding.DecodeString(data); err != nil {
			return nil, invalid("data", KindInvalid)
		}
	}
	if len(out) > MaxDataSize {
		return nil, invalid("data", KindTooLarge)
	}

	return out, nil
}

// checkParent hides parents the requester cannot mutate behind the same
// message as parents that do not exist.
func (fs *FileService) checkParent(ctx context.Context, requester user.ID, parentID domain.ID) error {
	if parentID == domain.Root {
		return nil
	}
	if parentID < 0 {
		return invalid("parentId", KindParentNotFound)
	}

	parent, err := fs.fileRepository.FetchNode(ctx, parentID)
	if err != nil {
		return fmt.Errorf("fetch parent: %w", err)
	}
	if !CanMutate(parent, requester) {
		return invalid("parentId", KindParentNotFound)
	}
	if parent.Type != domain.TypeFolder {
		return invalid("parentId", KindParentNotFolder)
	}

	return nil
}

// enqueue never fails the upload: on exhausted retries the node stays
// persisted and the reconciler picks it up later.
func (fs *FileService) enqueue(ctx context.Context, n *domain.Node) {
	job := domain.Job{FileID: n.ID, UserID: n.UserID}
	log := fs.logger.With(zap.Int64("file_id", int64(n.ID)))

	err := retry.Do(ctx, fs.backoff(), func(ctx context.Context) error {
		if err := fs.queue.Enqueue(ctx, job); err != nil {
			log.Warn("enqueue failed, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		fs.mCounter.WithLabelValues("enqueue_failed_total").Inc()
		log.Error("enqueue gave up, left for reconciler", zap.Error(err))
		return
	}

	ok, err := fs.fileRepository.TransitionStatus(ctx, n.ID, domain.StatusQueued, domain.StatusPersisted)
	if err != nil {
		log.Error("mark queued", zap.Error(err))
		return
	}
	if ok {
		n.Status = domain.StatusQueued
	}
}

func (fs *FileService) GetNode(ctx context.Context, requester user.ID, id domain.ID) (*domain.Node, error) {
	n, err := fs.fileRepository.FetchNode(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch node: %w", err)
	}
	if !CanRead(n, requester) {
		return nil, ErrNotFound
	}

	return n, nil
}

func (fs *FileService) ListNodes(ctx context.Context, requester user.ID, parentID domain.ID, page int) (domain.Nodes, error) {
	if requester == user.Anonymous {
		return nil, ErrUnauthorized
	}
	if page < 0 {
		page = 0
	}

	ns, err := fs.fileRepository.FetchNodes(ctx, requester, parentID, page)
	if err != nil {
		return nil, fmt.Errorf("fetch nodes: %w", err)
	}
	if ns == nil {
		ns = domain.Nodes{}
	}

	return ns, nil
}

func (fs *FileService) SetPublic(ctx context.Context, requester user.ID, id domain.ID, isPublic bool) (*domain.Node, error) {
	if requester == user.Anonymous {
		return nil, ErrUnauthorized
	}

	n, err := fs.fileRepository.UpdatePublic(ctx, id, requester, isPublic)
	if err != nil {
		return nil, fmt.Errorf("update node: %w", err)
	}
	if n == nil {
		return nil, ErrNotFound
	}

	return n, nil
}

// OpenContent reports a blob that is not there yet, such as a derivative
// still being generated, as ErrNotFound.
func (fs *FileService) OpenContent(ctx context.Context, requester user.ID, id domain.ID, width int) (*domain.Content, error) {
	n, err := fs.fileRepository.FetchNode(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch node: %w", err)
	}
	if !CanRead(n, requester) {
		return nil, ErrNotFound
	}
	if !n.Type.HasContent() {
		return nil, invalid("size", KindNoContent)
	}

	key := n.LocalPath
	if width != 0 {
		if !domain.IsThumbnailWidth(width) {
			return nil, invalid("size", KindInvalid)
		}
		key = domain.DerivativeKey(n.LocalPath, width)
	}

	rc, size, err := fs.blobs.Open(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}

	return &domain.Content{
		Name:        n.Name,
		ContentType: contentType(n.Name),
		Size:        size,
		Body:        rc,
	}, nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return defaultContentType
}
