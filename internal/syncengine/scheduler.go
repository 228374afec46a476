package syncengine

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stayharbor/channelsync/internal/constants"
	"stayharbor/channelsync/internal/logging"
	gormModels "stayharbor/channelsync/internal/models/gorm"
)

const (
	defaultTick    = 60 * time.Second
	defaultWorkers = 5
)

// BulkResult summarizes a SyncAll fan-out
type BulkResult struct {
	Dispatched int         `json:"dispatched"`
	Succeeded  int         `json:"succeeded"`
	Partial    int         `json:"partial"`
	Failed     int         `json:"failed"`
	Skipped    int         `json:"skipped"`
	Results    []RunResult `json:"results"`
}

// Scheduler owns sync timing: the cadence-driven background loop and the
// on-demand SyncAll fan-out. All runs funnel through the Coordinator, so
// per-connection serialization holds for every trigger path.
type Scheduler struct {
	coordinator *Coordinator
	connections ConnectionStore
	tick        time.Duration
	workers     int
}

// NewScheduler creates a scheduler with the given tick and worker pool size.
// Zero values fall back to the defaults (60s tick, 5 workers).
func NewScheduler(coordinator *Coordinator, connections ConnectionStore, tick time.Duration, workers int) *Scheduler {
	if tick <= 0 {
		tick = defaultTick
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Scheduler{
		coordinator: coordinator,
		connections: connections,
		tick:        tick,
		workers:     workers,
	}
}

// Start runs the cadence loop until ctx is cancelled. Call in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	logging.Info("Sync scheduler started",
		"tick", s.tick.String(),
		"workers", s.workers,
	)

	// Run immediately on start
	s.runDue(ctx)

	for {
		select {
		case <-ticker.C:
			s.runDue(ctx)
		case <-ctx.Done():
			logging.Info("Sync scheduler shutting down")
			return
		}
	}
}

// runDue dispatches every due connection at most once for this tick
func (s *Scheduler) runDue(ctx context.Context) {
	conns, err := s.connections.ListEnabled(ctx)
	if err != nil {
		logging.Error("Scheduler failed to list connections", "error", err.Error())
		return
	}

	now := time.Now().UTC()
	var due []gormModels.ChannelConnection
	for _, conn := range conns {
		if !s.isDue(&conn, now) {
			continue
		}
		// A connection still locked from a prior run just returns Busy;
		// skip it up front instead of burning a worker slot
		if s.coordinator.Locks().IsHeld(conn.ID) {
			continue
		}
		due = append(due, conn)
	}

	if len(due) == 0 {
		return
	}
	logging.Debug("Dispatching due connections", "count", len(due))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, conn := range due {
		conn := conn
		g.Go(func() error {
			_, err := s.coordinator.RunSync(gctx, conn.ID, constants.SyncTypeAuto)
			if err != nil && !errors.Is(err, ErrBusy) {
				logging.Error("Scheduled sync failed",
					"connection_id", conn.ID,
					"platform", conn.Platform,
					"error", err.Error(),
				)
			}
			// Best-effort: one connection never aborts the tick
			return nil
		})
	}
	_ = g.Wait()
}

// isDue applies the per-connection cadence
func (s *Scheduler) isDue(conn *gormModels.ChannelConnection, now time.Time) bool {
	if !conn.Enabled || !conn.AutoSyncEnabled {
		return false
	}
	if conn.LastSyncAt == nil {
		return true
	}
	interval := time.Duration(conn.SyncIntervalMinutes) * time.Minute
	return now.Sub(*conn.LastSyncAt) >= interval
}

// SyncAll fans out over every enabled connection with bounded concurrency.
// Best-effort broadcast: individual failures never abort the batch. Returns
// after all dispatched runs complete or time out.
func (s *Scheduler) SyncAll(ctx context.Context) (*BulkResult, error) {
	conns, err := s.connections.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, conn := range conns {
		conn := conn
		result.Dispatched++
		g.Go(func() error {
			run, err := s.coordinator.RunSync(gctx, conn.ID, constants.SyncTypeBulk)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrBusy):
				result.Skipped++
			case err != nil:
				result.Failed++
				logging.Error("Bulk sync failed",
					"connection_id", conn.ID,
					"platform", conn.Platform,
					"error", err.Error(),
				)
			case run.Status == constants.SyncStatusSuccess:
				result.Succeeded++
				result.Results = append(result.Results, *run)
			case run.Status == constants.SyncStatusPartial:
				result.Partial++
				result.Results = append(result.Results, *run)
			default:
				result.Failed++
				result.Results = append(result.Results, *run)
			}
			return nil
		})
	}
	_ = g.Wait()

	logging.Info("Bulk sync completed",
		"dispatched", result.Dispatched,
		"succeeded", result.Succeeded,
		"partial", result.Partial,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)

	return result, nil
}
