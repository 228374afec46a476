package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"

	gormModels "stayharbor/channelsync/internal/models/gorm"
)

// BookingRepository handles bookings table operations
type BookingRepository struct {
	db *gormlib.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gormlib.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListByProperty returns all bookings for a property across platforms
func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID string) ([]gormModels.Booking, error) {
	var bookings []gormModels.Booking

	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("start_date ASC").
		Find(&bookings).Error

	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindByExternalUID finds a booking by its platform identifier.
// Returns nil, nil when absent.
func (r *BookingRepository) FindByExternalUID(ctx context.Context, propertyID, platform, externalUID string) (*gormModels.Booking, error) {
	var booking gormModels.Booking

	err := r.db.WithContext(ctx).
		Where("property_id = ? AND platform = ? AND external_uid = ?", propertyID, platform, externalUID).
		First(&booking).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// ApplyRun persists a run's adds and updates together with its sync log
// inside one transaction. A crash mid-run never leaves the log
// inconsistent with booking state.
func (r *BookingRepository) ApplyRun(ctx context.Context, adds []gormModels.Booking, updates []gormModels.Booking, logEntry *gormModels.SyncLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		now := time.Now().UTC()

		for i := range adds {
			if adds[i].ID == "" {
				adds[i].ID = uuid.NewString()
			}
			adds[i].CreatedAt = now
			adds[i].UpdatedAt = now
			if err := tx.Create(&adds[i]).Error; err != nil {
				return err
			}
		}

		for i := range updates {
			updates[i].UpdatedAt = now
			if err := tx.Save(&updates[i]).Error; err != nil {
				return err
			}
		}

		if logEntry != nil {
			if logEntry.ID == "" {
				logEntry.ID = uuid.NewString()
			}
			if err := tx.Create(logEntry).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
