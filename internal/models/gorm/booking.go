package gorm

import "time"

// Booking is the canonical reservation record the engine reconciles against.
// ExternalUID is nil for manually created bookings; for platform-sourced
// bookings it is the platform's own identifier (or a synthetic key derived
// from the event for UID-less iCal feeds).
type Booking struct {
	ID          string  `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	PropertyID  string  `gorm:"column:property_id;type:uuid;not null;index:idx_bookings_property"`
	ExternalUID *string `gorm:"column:external_uid;type:varchar(255);index:idx_bookings_platform_uid"`
	Platform    string  `gorm:"column:platform;type:varchar(30);index:idx_bookings_platform_uid"`

	GuestName string `gorm:"column:guest_name;type:varchar(200)"`

	// Half-open range: StartDate inclusive, EndDate exclusive
	StartDate time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null"`

	Status string `gorm:"column:status;type:varchar(20);not null;default:'booked'"`

	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// UID returns the external UID or "" when the booking was created manually
func (b *Booking) UID() string {
	if b.ExternalUID == nil {
		return ""
	}
	return *b.ExternalUID
}

// Overlaps reports whether the half-open ranges of two bookings intersect
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}
