package workers

import (
	"context"
	"time"

	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services"

	"gorm.io/gorm"
)

const cleanupBatchSize = 100

// UploadCleanupWorker удаляет загрузки, оставшиеся без заявки
// (оборванная подача, неудачная компенсация).
type UploadCleanupWorker struct {
	db         *gorm.DB
	uploadRepo repositories.UploadRepository
	uploads    services.UploadService
	interval   time.Duration
	// grace - загрузки моложе этого возраста могут принадлежать заявке, которая еще сохраняется
	grace time.Duration
	now   func() time.Time
}

func NewUploadCleanupWorker(db *gorm.DB, uploadRepo repositories.UploadRepository, uploads services.UploadService, interval, grace time.Duration) *UploadCleanupWorker {
	return &UploadCleanupWorker{
		db:         db,
		uploadRepo: uploadRepo,
		uploads:    uploads,
		interval:   interval,
		grace:      grace,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start запускает очистку в фоне до отмены ctx
func (w *UploadCleanupWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *UploadCleanupWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Upload cleanup worker stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				logger.Error("Upload cleanup failed", "error", err)
			}
		}
	}
}

// RunOnce удаляет одну пачку осиротевших загрузок и возвращает их число
func (w *UploadCleanupWorker) RunOnce(ctx context.Context) (int, error) {
	db := w.db.WithContext(ctx)

	orphans, err := w.uploadRepo.FindOrphaned(db, w.now().Add(-w.grace), cleanupBatchSize)
	if err != nil {
		return 0, err
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	batch := make([]*models.Upload, 0, len(orphans))
	for i := range orphans {
		batch = append(batch, &orphans[i])
	}
	w.uploads.Discard(ctx, db, batch...)

	logger.Info("Removed orphaned uploads", "count", len(batch))
	return len(batch), nil
}
