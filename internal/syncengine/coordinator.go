package syncengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayharbor/channelsync/internal/constants"
	"stayharbor/channelsync/internal/logging"
	"stayharbor/channelsync/internal/metrics"
	gormModels "stayharbor/channelsync/internal/models/gorm"
	"stayharbor/channelsync/internal/providers"
)

const defaultRunTimeout = 60 * time.Second

// RunResult summarizes one completed sync run
type RunResult struct {
	ConnectionID string    `json:"connection_id"`
	Platform     string    `json:"platform"`
	SyncType     string    `json:"sync_type"`
	Status       string    `json:"status"`
	Added        int       `json:"added"`
	Updated      int       `json:"updated"`
	Errors       int       `json:"errors"`
	Noops        int       `json:"noops"`
	Message      string    `json:"message"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Coordinator executes one sync run for one connection:
// lock, fetch, reconcile, persist, log, unlock.
type Coordinator struct {
	connections ConnectionStore
	bookings    BookingStore
	syncLogs    SyncLogStore
	providers   map[string]providers.ChannelProvider
	locks       *LockRegistry
	metricsReg  *metrics.MetricsRegistry
	runTimeout  time.Duration
}

// NewCoordinator creates a sync coordinator. metricsReg may be nil.
func NewCoordinator(
	connections ConnectionStore,
	bookings BookingStore,
	syncLogs SyncLogStore,
	provs map[string]providers.ChannelProvider,
	metricsReg *metrics.MetricsRegistry,
) *Coordinator {
	return &Coordinator{
		connections: connections,
		bookings:    bookings,
		syncLogs:    syncLogs,
		providers:   provs,
		locks:       NewLockRegistry(),
		metricsReg:  metricsReg,
		runTimeout:  defaultRunTimeout,
	}
}

// Locks exposes the registry so the scheduler can skip in-flight connections
func (c *Coordinator) Locks() *LockRegistry {
	return c.locks
}

// RunSync executes one sync run. A run that fails inside the provider
// still completes: it writes an error sync log and returns a RunResult
// with status=error. The returned error is reserved for rejections
// (unknown, disabled, busy) and store failures.
func (c *Coordinator) RunSync(ctx context.Context, connectionID string, syncType string) (*RunResult, error) {
	conn, err := c.connections.GetByID(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return nil, ErrNotFound
	}
	if !conn.Enabled {
		return nil, ErrDisabled
	}

	if !c.locks.TryAcquire(conn.ID) {
		return nil, ErrBusy
	}
	defer c.locks.Release(conn.ID)

	runCtx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	log := logging.WithRun(conn.ID, conn.PropertyID, conn.Platform, syncType)
	startedAt := time.Now().UTC()
	log.Infow("Sync run started")

	if c.metricsReg != nil {
		c.metricsReg.SyncRunsInFlight.Inc()
		defer c.metricsReg.SyncRunsInFlight.Dec()
	}

	provider, ok := c.providers[conn.ConnectionType]
	if !ok {
		return c.finishFailedRun(ctx, conn, syncType, startedAt,
			fmt.Sprintf("no provider registered for connection type %q", conn.ConnectionType))
	}

	fetched, fetchErr := provider.FetchEvents(runCtx, conn)
	if fetchErr != nil {
		log.Errorw("Provider fetch failed",
			"error", fetchErr.Error(),
			"error_code", providers.ErrorCode(fetchErr),
			"retryable", providers.IsTransportError(fetchErr),
		)
		return c.finishFailedRun(ctx, conn, syncType, startedAt, fetchErr.Error())
	}

	if c.metricsReg != nil {
		c.metricsReg.EventsFetchedTotal.WithLabelValues(conn.Platform).Add(float64(len(fetched.Events)))
	}

	existing, err := c.bookings.ListByProperty(runCtx, conn.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	decisions := Reconcile(conn, existing, fetched.Events)

	status := constants.SyncStatusSuccess
	if len(decisions.Conflicts) > 0 || len(fetched.Warnings) > 0 {
		status = constants.SyncStatusPartial
	}

	errorCount := len(decisions.Conflicts) + len(fetched.Warnings)
	message := buildRunMessage(decisions, fetched.Warnings)
	completedAt := time.Now().UTC()

	logEntry := &gormModels.SyncLog{
		ConnectionID: conn.ID,
		PropertyID:   conn.PropertyID,
		Platform:     conn.Platform,
		SyncType:     syncType,
		Status:       status,
		Added:        len(decisions.Adds),
		Updated:      len(decisions.Updates),
		Errors:       errorCount,
		Message:      message,
		StartedAt:    startedAt,
		CompletedAt:  &completedAt,
	}

	if err := c.bookings.ApplyRun(runCtx, decisions.Adds, decisions.Updates, logEntry); err != nil {
		log.Errorw("Failed to persist sync run", "error", err.Error())
		return nil, fmt.Errorf("failed to persist sync run: %w", err)
	}

	if err := c.connections.UpdateSyncStatus(ctx, conn.ID, completedAt, status, message); err != nil {
		log.Warnw("Failed to update connection status", "error", err.Error())
	}

	c.recordRunMetrics(conn.Platform, syncType, status, startedAt, &decisions)

	log.Infow("Sync run completed",
		"status", status,
		"added", len(decisions.Adds),
		"updated", len(decisions.Updates),
		"noops", decisions.Noops,
		"conflicts", len(decisions.Conflicts),
		"warnings", len(fetched.Warnings),
		"missing", len(decisions.MissingUIDs),
		"duration_ms", completedAt.Sub(startedAt).Milliseconds(),
	)

	return &RunResult{
		ConnectionID: conn.ID,
		Platform:     conn.Platform,
		SyncType:     syncType,
		Status:       status,
		Added:        len(decisions.Adds),
		Updated:      len(decisions.Updates),
		Errors:       errorCount,
		Noops:        decisions.Noops,
		Message:      message,
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
	}, nil
}

// finishFailedRun records a run that aborted before reconciliation.
// The sync log is still written so the failure is auditable.
func (c *Coordinator) finishFailedRun(ctx context.Context, conn *gormModels.ChannelConnection, syncType string, startedAt time.Time, message string) (*RunResult, error) {
	completedAt := time.Now().UTC()

	logEntry := &gormModels.SyncLog{
		ConnectionID: conn.ID,
		PropertyID:   conn.PropertyID,
		Platform:     conn.Platform,
		SyncType:     syncType,
		Status:       constants.SyncStatusError,
		Errors:       1,
		Message:      message,
		StartedAt:    startedAt,
		CompletedAt:  &completedAt,
	}
	if err := c.syncLogs.Insert(ctx, logEntry); err != nil {
		logging.Error("Failed to write sync log for failed run",
			"connection_id", conn.ID, "error", err.Error())
	}

	if err := c.connections.UpdateSyncStatus(ctx, conn.ID, completedAt, constants.SyncStatusError, message); err != nil {
		logging.Warn("Failed to update connection status",
			"connection_id", conn.ID, "error", err.Error())
	}

	if c.metricsReg != nil {
		c.metricsReg.SyncRunsTotal.WithLabelValues(conn.Platform, syncType, constants.SyncStatusError).Inc()
		c.metricsReg.SyncRunDuration.WithLabelValues(conn.Platform).Observe(completedAt.Sub(startedAt).Seconds())
	}

	return &RunResult{
		ConnectionID: conn.ID,
		Platform:     conn.Platform,
		SyncType:     syncType,
		Status:       constants.SyncStatusError,
		Errors:       1,
		Message:      message,
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
	}, nil
}

func (c *Coordinator) recordRunMetrics(platform, syncType, status string, startedAt time.Time, d *Decisions) {
	if c.metricsReg == nil {
		return
	}
	c.metricsReg.SyncRunsTotal.WithLabelValues(platform, syncType, status).Inc()
	c.metricsReg.SyncRunDuration.WithLabelValues(platform).Observe(time.Since(startedAt).Seconds())
	if len(d.Adds) > 0 {
		c.metricsReg.BookingsWrittenTotal.WithLabelValues(platform, "add").Add(float64(len(d.Adds)))
	}
	if len(d.Updates) > 0 {
		c.metricsReg.BookingsWrittenTotal.WithLabelValues(platform, "update").Add(float64(len(d.Updates)))
	}
	if len(d.Conflicts) > 0 {
		c.metricsReg.ConflictsTotal.WithLabelValues(platform).Add(float64(len(d.Conflicts)))
	}
}

// buildRunMessage aggregates per-event problems into the audit message
func buildRunMessage(d Decisions, warnings []string) string {
	var parts []string

	for _, c := range d.Conflicts {
		parts = append(parts, "conflict: "+c.Describe())
	}
	for _, w := range warnings {
		parts = append(parts, "warning: "+w)
	}
	if n := len(d.MissingUIDs); n > 0 {
		shown := d.MissingUIDs
		if len(shown) > 5 {
			shown = shown[:5]
		}
		parts = append(parts, fmt.Sprintf("%d booking(s) missing from feed, left in place: %s",
			n, strings.Join(shown, ", ")))
	}

	if len(parts) == 0 {
		return "Sync completed"
	}
	return strings.Join(parts, "; ")
}
