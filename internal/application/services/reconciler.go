package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"files-manager-api/internal/application/ports"
	domain "files-manager-api/internal/domain/file"
)

const reconcileBatch = 100

// Reconciler re-enqueues uploads whose job could not reach the broker.
type Reconciler struct {
	fileRepository domain.Repository
	queue          ports.JobQueue
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
	staleAfter     time.Duration
	now            func() time.Time
}

func NewReconciler(
	fileRepository domain.Repository,
	queue ports.JobQueue,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
	staleAfter time.Duration,
) *Reconciler {
	return &Reconciler{
		fileRepository: fileRepository,
		queue:          queue,
		logger:         logger,
		mCounter:       mCounter,
		staleAfter:     staleAfter,
		now:            time.Now,
	}
}

// Schedule registers one reconcile pass per tick of spec on c.
func (r *Reconciler) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if _, err := r.Run(ctx); err != nil {
			r.logger.Error("reconcile failed", zap.Error(err))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule reconciler %q: %w", spec, err)
	}

	return id, nil
}

// Run makes a single pass and returns how many nodes were re-enqueued.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	stale, err := r.fileRepository.FetchStaleNodes(ctx, domain.StatusPersisted, r.now().Add(-r.staleAfter), reconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("fetch stale nodes: %w", err)
	}

	requeued := 0
	for _, n := range stale {
		if ctx.Err() != nil {
			return requeued, ctx.Err()
		}

		log := r.logger.With(zap.Int64("file_id", int64(n.ID)))
		if err = r.queue.Enqueue(ctx, domain.Job{FileID: n.ID, UserID: n.UserID}); err != nil {
			log.Warn("re-enqueue failed", zap.Error(err))
			continue
		}
		if _, err = r.fileRepository.TransitionStatus(ctx, n.ID, domain.StatusQueued, domain.StatusPersisted); err != nil {
			log.Warn("mark queued", zap.Error(err))
		}
		requeued++
	}

	if requeued > 0 {
		r.mCounter.WithLabelValues("reconciled_total").Add(float64(requeued))
		r.logger.Info("reconciled stale uploads", zap.Int("count", requeued))
	}

	return requeued, nil
}
