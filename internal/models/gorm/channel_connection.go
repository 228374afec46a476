package gorm

import "time"

// ChannelConnection configures one (property, platform) sync pairing
type ChannelConnection struct {
	ID         string `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	PropertyID string `gorm:"column:property_id;type:uuid;not null;index:idx_connections_property"`
	Platform   string `gorm:"column:platform;type:varchar(30);not null"`

	// How the engine talks to the platform
	ConnectionType     string  `gorm:"column:connection_type;type:varchar(10);not null"`
	IcalURL            *string `gorm:"column:ical_url;type:text"`
	APIKey             *string `gorm:"column:api_key;type:text"`
	ExternalPropertyID *string `gorm:"column:external_property_id;type:varchar(100)"`

	// Scheduling
	AutoSyncEnabled     bool `gorm:"column:auto_sync_enabled;not null;default:true"`
	SyncIntervalMinutes int  `gorm:"column:sync_interval_minutes;not null;default:60"`
	Enabled             bool `gorm:"column:enabled;not null;default:true"`

	// Written only by the run that holds this connection's lock
	LastSyncAt      *time.Time `gorm:"column:last_sync_at"`
	LastSyncStatus  *string    `gorm:"column:last_sync_status;type:varchar(10)"`
	LastSyncMessage *string    `gorm:"column:last_sync_message;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

// TableName specifies the table name for GORM
func (ChannelConnection) TableName() string {
	return "channel_connections"
}
