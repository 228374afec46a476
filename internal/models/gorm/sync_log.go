package gorm

import "time"

// SyncLog is the append-only audit record for one sync run.
// Never mutated once CompletedAt is set.
type SyncLog struct {
	ID           string `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	ConnectionID string `gorm:"column:connection_id;type:uuid;not null;index:idx_sync_logs_connection"`
	PropertyID   string `gorm:"column:property_id;type:uuid;not null"`
	Platform     string `gorm:"column:platform;type:varchar(30);not null"`

	SyncType string `gorm:"column:sync_type;type:varchar(10);not null"`
	Status   string `gorm:"column:status;type:varchar(10);not null"`

	Added   int `gorm:"column:added;not null;default:0"`
	Updated int `gorm:"column:updated;not null;default:0"`
	Errors  int `gorm:"column:errors;not null;default:0"`

	Message string `gorm:"column:message;type:text"`

	StartedAt   time.Time  `gorm:"column:started_at;not null;index:idx_sync_logs_started"`
	CompletedAt *time.Time `gorm:"column:completed_at"`

	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

// TableName specifies the table name for GORM
func (SyncLog) TableName() string {
	return "sync_logs"
}
