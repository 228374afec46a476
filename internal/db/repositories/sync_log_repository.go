package repositories

import (
	"context"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"

	gormModels "stayharbor/channelsync/internal/models/gorm"
)

// SyncLogRepository handles sync_logs table operations.
// Rows are append-only: never mutated once completed_at is set.
type SyncLogRepository struct {
	db *gormlib.DB
}

// NewSyncLogRepository creates a new sync log repository
func NewSyncLogRepository(db *gormlib.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Insert appends one audit record
func (r *SyncLogRepository) Insert(ctx context.Context, logEntry *gormModels.SyncLog) error {
	if logEntry.ID == "" {
		logEntry.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(logEntry).Error
}

// List returns recent logs, newest first, optionally for one connection
func (r *SyncLogRepository) List(ctx context.Context, connectionID string, limit int) ([]gormModels.SyncLog, error) {
	var logs []gormModels.SyncLog

	query := r.db.WithContext(ctx).Order("started_at DESC")
	if connectionID != "" {
		query = query.Where("connection_id = ?", connectionID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteByConnection purges a deleted connection's history
func (r *SyncLogRepository) DeleteByConnection(ctx context.Context, connectionID string) error {
	return r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Delete(&gormModels.SyncLog{}).Error
}
