package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"

	gormModels "stayharbor/channelsync/internal/models/gorm"
)

// ConnectionRepository handles channel_connections table operations
type ConnectionRepository struct {
	db *gormlib.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *gormlib.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// GetByID finds a connection by ID. Returns nil, nil when absent.
func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*gormModels.ChannelConnection, error) {
	var conn gormModels.ChannelConnection

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&conn).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &conn, nil
}

// List returns connections, optionally filtered by property
func (r *ConnectionRepository) List(ctx context.Context, propertyID string) ([]gormModels.ChannelConnection, error) {
	var conns []gormModels.ChannelConnection

	query := r.db.WithContext(ctx).Order("created_at ASC")
	if propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}

	if err := query.Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

// ListEnabled returns every connection whose kill-switch is on
func (r *ConnectionRepository) ListEnabled(ctx context.Context) ([]gormModels.ChannelConnection, error) {
	var conns []gormModels.ChannelConnection

	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("created_at ASC").
		Find(&conns).Error

	if err != nil {
		return nil, err
	}
	return conns, nil
}

// FindEnabledDuplicate returns an enabled connection with the same
// (property, platform, external property) triple, excluding excludeID.
// Used to enforce the single-enabled-connection invariant.
func (r *ConnectionRepository) FindEnabledDuplicate(ctx context.Context, propertyID, platform string, externalPropertyID *string, excludeID string) (*gormModels.ChannelConnection, error) {
	var conn gormModels.ChannelConnection

	query := r.db.WithContext(ctx).
		Where("property_id = ? AND platform = ? AND enabled = ?", propertyID, platform, true)
	if externalPropertyID == nil {
		query = query.Where("external_property_id IS NULL")
	} else {
		query = query.Where("external_property_id = ?", *externalPropertyID)
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	err := query.First(&conn).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// Create inserts a new connection, assigning an ID when none is set
func (r *ConnectionRepository) Create(ctx context.Context, conn *gormModels.ChannelConnection) error {
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(conn).Error
}

// Update saves operator-editable fields
func (r *ConnectionRepository) Update(ctx context.Context, conn *gormModels.ChannelConnection) error {
	conn.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(conn).Error
}

// DeleteWithLogs removes a connection and purges its sync log history in
// one transaction
func (r *ConnectionRepository) DeleteWithLogs(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("connection_id = ?", id).Delete(&gormModels.SyncLog{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&gormModels.ChannelConnection{}).Error
	})
}

// UpdateSyncStatus writes the last_sync_* fields after a run
func (r *ConnectionRepository) UpdateSyncStatus(ctx context.Context, id string, at time.Time, status string, message string) error {
	return r.db.WithContext(ctx).
		Model(&gormModels.ChannelConnection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_sync_at":      at,
			"last_sync_status":  status,
			"last_sync_message": message,
			"updated_at":        time.Now().UTC(),
		}).Error
}
