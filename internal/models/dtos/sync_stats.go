package dtos

// SyncStats carries the dashboard counters derived from connections and
// the sync log stream
type SyncStats struct {
	TotalConnections  int            `json:"total_connections"`
	ActiveConnections int            `json:"active_connections"`
	AutoSyncCount     int            `json:"auto_sync_count"`
	SyncedToday       int            `json:"synced_today"`
	ErrorCount        int            `json:"error_count"`
	PlatformCounts    map[string]int `json:"platform_counts"`
}
