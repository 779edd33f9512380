package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"skillscreen/resume-screener/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(screeningID uuid.UUID)
}

type worker struct {
	screeningRepo repositories.ScreeningRepository
	processor     ScreeningProcessor
	logger        *zap.Logger
	jobQueue      chan uuid.UUID
	concurrency   int
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

func NewWorker(
	screeningRepo repositories.ScreeningRepository,
	processor ScreeningProcessor,
	concurrency int,
	logger *zap.Logger,
) Worker {
	return &worker{
		screeningRepo: screeningRepo,
		processor:     processor,
		logger:        logger,
		jobQueue:      make(chan uuid.UUID, 100),
		concurrency:   concurrency,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting worker pool", zap.Int("concurrency", w.concurrency))

	// Start worker goroutines
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// Start polling for queued jobs
	w.wg.Add(1)
	go w.pollQueuedJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("stopping worker pool")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("worker pool stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(screeningID uuid.UUID) {
	select {
	case w.jobQueue <- screeningID:
		w.logger.Debug("screening enqueued", zap.String("screening_id", screeningID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue screening",
			zap.String("screening_id", screeningID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case screeningID := <-w.jobQueue:
			w.logger.Info("processing screening",
				zap.Int("worker", workerID),
				zap.String("screening_id", screeningID.String()))

			if err := w.processor.ProcessScreening(ctx, screeningID); err != nil {
				w.logger.Error("screening failed",
					zap.Int("worker", workerID),
					zap.String("screening_id", screeningID.String()),
					zap.Error(err))
			} else {
				w.logger.Info("screening completed",
					zap.Int("worker", workerID),
					zap.String("screening_id", screeningID.String()))
			}
		}
	}
}

// pollQueuedJobs picks up screenings left in the queued state, for
// example after a restart before the worker drained its channel.
func (w *worker) pollQueuedJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pendingJobs, err := w.screeningRepo.FindPendingJobs(10)
			if err != nil {
				w.logger.Warn("failed to fetch queued screenings", zap.Error(err))
				continue
			}

			if len(pendingJobs) > 0 {
				w.logger.Info("found queued screenings", zap.Int("count", len(pendingJobs)))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
