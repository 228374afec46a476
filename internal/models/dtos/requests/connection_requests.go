package requests

// CreateConnectionRequest is the operator payload for registering a new
// (property, platform) sync pairing
type CreateConnectionRequest struct {
	PropertyID          string  `json:"property_id"`
	Platform            string  `json:"platform"`
	ConnectionType      string  `json:"connection_type"`
	IcalURL             *string `json:"ical_url,omitempty"`
	APIKey              *string `json:"api_key,omitempty"`
	ExternalPropertyID  *string `json:"external_property_id,omitempty"`
	AutoSyncEnabled     *bool   `json:"auto_sync_enabled,omitempty"`
	SyncIntervalMinutes *int    `json:"sync_interval_minutes,omitempty"`
}

// UpdateConnectionRequest carries operator edits; nil fields are unchanged
type UpdateConnectionRequest struct {
	IcalURL             *string `json:"ical_url,omitempty"`
	APIKey              *string `json:"api_key,omitempty"`
	ExternalPropertyID  *string `json:"external_property_id,omitempty"`
	AutoSyncEnabled     *bool   `json:"auto_sync_enabled,omitempty"`
	SyncIntervalMinutes *int    `json:"sync_interval_minutes,omitempty"`
	Enabled             *bool   `json:"enabled,omitempty"`
}

// TestLodgifyKeyRequest validates an API key during connection setup
type TestLodgifyKeyRequest struct {
	APIKey string `json:"api_key"`
}
