package syncengine

import (
	"context"
	"time"

	gormModels "stayharbor/channelsync/internal/models/gorm"
)

// ConnectionStore is the engine's view of connection persistence.
// The reconciliation and scheduling logic depends only on these
// interfaces, never on a specific database client.
type ConnectionStore interface {
	// GetByID returns nil, nil when no connection exists
	GetByID(ctx context.Context, id string) (*gormModels.ChannelConnection, error)

	// ListEnabled returns every connection with the kill-switch on
	ListEnabled(ctx context.Context) ([]gormModels.ChannelConnection, error)

	// UpdateSyncStatus writes the last_sync_* fields. Called only by the
	// run holding the connection's lock.
	UpdateSyncStatus(ctx context.Context, id string, at time.Time, status string, message string) error
}

// BookingStore is the engine's view of the canonical booking records
type BookingStore interface {
	// ListByProperty returns all bookings for a property, any platform
	ListByProperty(ctx context.Context, propertyID string) ([]gormModels.Booking, error)

	// ApplyRun persists the run's adds, updates and its sync log inside
	// one transaction, so a crash mid-run never leaves the log
	// inconsistent with booking state.
	ApplyRun(ctx context.Context, adds []gormModels.Booking, updates []gormModels.Booking, logEntry *gormModels.SyncLog) error
}

// SyncLogStore reads and appends audit records outside a booking transaction
type SyncLogStore interface {
	Insert(ctx context.Context, logEntry *gormModels.SyncLog) error
	List(ctx context.Context, connectionID string, limit int) ([]gormModels.SyncLog, error)
	DeleteByConnection(ctx context.Context, connectionID string) error
}
