package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"stayharbor/channelsync/internal/models/dtos"
)

// StatsRepository derives dashboard counters from the connection and
// sync log tables with raw aggregate queries
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats computes the dashboard counters in one pass
func (r *StatsRepository) GetStats(ctx context.Context) (*dtos.SyncStats, error) {
	stats := &dtos.SyncStats{
		PlatformCounts: make(map[string]int),
	}

	connQuery := `
		SELECT
			COUNT(*)                                                   AS total,
			COUNT(*) FILTER (WHERE enabled)                            AS active,
			COUNT(*) FILTER (WHERE enabled AND auto_sync_enabled)      AS auto_sync
		FROM channel_connections`

	var connRow struct {
		Total    int `db:"total"`
		Active   int `db:"active"`
		AutoSync int `db:"auto_sync"`
	}
	if err := r.db.GetContext(ctx, &connRow, connQuery); err != nil {
		return nil, err
	}
	stats.TotalConnections = connRow.Total
	stats.ActiveConnections = connRow.Active
	stats.AutoSyncCount = connRow.AutoSync

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	logQuery := `
		SELECT
			COUNT(*)                                  AS synced_today,
			COUNT(*) FILTER (WHERE status = 'error')  AS error_count
		FROM sync_logs
		WHERE started_at >= $1`

	var logRow struct {
		SyncedToday int `db:"synced_today"`
		ErrorCount  int `db:"error_count"`
	}
	if err := r.db.GetContext(ctx, &logRow, logQuery, midnight); err != nil {
		return nil, err
	}
	stats.SyncedToday = logRow.SyncedToday
	stats.ErrorCount = logRow.ErrorCount

	platformQuery := `SELECT platform, COUNT(*) AS count FROM channel_connections GROUP BY platform`
	rows := []struct {
		Platform string `db:"platform"`
		Count    int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, platformQuery); err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.PlatformCounts[row.Platform] = row.Count
	}

	return stats, nil
}
