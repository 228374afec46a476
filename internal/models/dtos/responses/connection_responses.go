package responses

import (
	"time"

	gormModels "stayharbor/channelsync/internal/models/gorm"
)

// ConnectionResponse is the API view of a channel connection. The API
// key is never echoed back, only whether one is set.
type ConnectionResponse struct {
	ID                  string     `json:"id"`
	PropertyID          string     `json:"property_id"`
	Platform            string     `json:"platform"`
	ConnectionType      string     `json:"connection_type"`
	IcalURL             *string    `json:"ical_url,omitempty"`
	HasAPIKey           bool       `json:"has_api_key"`
	ExternalPropertyID  *string    `json:"external_property_id,omitempty"`
	AutoSyncEnabled     bool       `json:"auto_sync_enabled"`
	SyncIntervalMinutes int        `json:"sync_interval_minutes"`
	Enabled             bool       `json:"enabled"`
	LastSyncAt          *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus      *string    `json:"last_sync_status,omitempty"`
	LastSyncMessage     *string    `json:"last_sync_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func NewConnectionResponse(conn *gormModels.ChannelConnection) ConnectionResponse {
	return ConnectionResponse{
		ID:                  conn.ID,
		PropertyID:          conn.PropertyID,
		Platform:            conn.Platform,
		ConnectionType:      conn.ConnectionType,
		IcalURL:             conn.IcalURL,
		HasAPIKey:           conn.APIKey != nil && *conn.APIKey != "",
		ExternalPropertyID:  conn.ExternalPropertyID,
		AutoSyncEnabled:     conn.AutoSyncEnabled,
		SyncIntervalMinutes: conn.SyncIntervalMinutes,
		Enabled:             conn.Enabled,
		LastSyncAt:          conn.LastSyncAt,
		LastSyncStatus:      conn.LastSyncStatus,
		LastSyncMessage:     conn.LastSyncMessage,
		CreatedAt:           conn.CreatedAt,
		UpdatedAt:           conn.UpdatedAt,
	}
}

// SyncLogResponse is the API view of one sync run record
type SyncLogResponse struct {
	ID           string     `json:"id"`
	ConnectionID string     `json:"connection_id"`
	PropertyID   string     `json:"property_id"`
	Platform     string     `json:"platform"`
	SyncType     string     `json:"sync_type"`
	Status       string     `json:"status"`
	Added        int        `json:"added"`
	Updated      int        `json:"updated"`
	Errors       int        `json:"errors"`
	Message      string     `json:"message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func NewSyncLogResponse(entry *gormModels.SyncLog) SyncLogResponse {
	return SyncLogResponse{
		ID:           entry.ID,
		ConnectionID: entry.ConnectionID,
		PropertyID:   entry.PropertyID,
		Platform:     entry.Platform,
		SyncType:     entry.SyncType,
		Status:       entry.Status,
		Added:        entry.Added,
		Updated:      entry.Updated,
		Errors:       entry.Errors,
		Message:      entry.Message,
		StartedAt:    entry.StartedAt,
		CompletedAt:  entry.CompletedAt,
	}
}
