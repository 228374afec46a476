package syncengine

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"stayharbor/channelsync/internal/constants"
	gormModels "stayharbor/channelsync/internal/models/gorm"
	"stayharbor/channelsync/internal/providers"
)

func TestScheduler_IsDue(t *testing.T) {
	s := NewScheduler(nil, nil, 0, 0)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-10 * time.Minute)
	stale := now.Add(-2 * time.Hour)

	cases := []struct {
		name string
		conn gormModels.ChannelConnection
		want bool
	}{
		{
			name: "never synced",
			conn: gormModels.ChannelConnection{Enabled: true, AutoSyncEnabled: true, SyncIntervalMinutes: 60},
			want: true,
		},
		{
			name: "interval elapsed",
			conn: gormModels.ChannelConnection{Enabled: true, AutoSyncEnabled: true, SyncIntervalMinutes: 60, LastSyncAt: &stale},
			want: true,
		},
		{
			name: "interval not elapsed",
			conn: gormModels.ChannelConnection{Enabled: true, AutoSyncEnabled: true, SyncIntervalMinutes: 60, LastSyncAt: &recent},
			want: false,
		},
		{
			name: "auto sync off",
			conn: gormModels.ChannelConnection{Enabled: true, AutoSyncEnabled: false, SyncIntervalMinutes: 60, LastSyncAt: &stale},
			want: false,
		},
		{
			name: "disabled",
			conn: gormModels.ChannelConnection{Enabled: false, AutoSyncEnabled: true, SyncIntervalMinutes: 60, LastSyncAt: &stale},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.isDue(&tc.conn, now); got != tc.want {
				t.Errorf("isDue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScheduler_SyncAllBoundedFanOut(t *testing.T) {
	const total = 20
	const workers = 3

	var conns []gormModels.ChannelConnection
	for i := 0; i < total; i++ {
		c := enabledConnection()
		c.ID = "conn-" + strconv.Itoa(i)
		c.PropertyID = "prop-" + strconv.Itoa(i)
		conns = append(conns, c)
	}
	connStore := newFakeConnectionStore(conns...)
	bookings := &fakeBookingStore{}
	logs := &fakeSyncLogStore{}

	var inFlight, maxInFlight int64
	provider := &fakeProvider{
		fetchFunc: func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				prev := atomic.LoadInt64(&maxInFlight)
				if n <= prev || atomic.CompareAndSwapInt64(&maxInFlight, prev, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return &providers.FetchResult{}, nil
		},
	}

	c := newTestCoordinator(connStore, bookings, logs, provider)
	s := NewScheduler(c, connStore, 0, workers)

	result, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Dispatched != total {
		t.Errorf("Expected %d dispatched, got %d", total, result.Dispatched)
	}
	if result.Succeeded != total {
		t.Errorf("Expected %d succeeded, got %+v", total, result)
	}
	if got := atomic.LoadInt64(&maxInFlight); got > workers {
		t.Errorf("Fan-out exceeded worker bound: %d > %d", got, workers)
	}
	for _, run := range result.Results {
		if run.SyncType != constants.SyncTypeBulk {
			t.Errorf("Expected bulk sync type, got %s", run.SyncType)
		}
	}
}

func TestScheduler_SyncAllSkipsBusyConnections(t *testing.T) {
	connStore := newFakeConnectionStore(enabledConnection())
	bookings := &fakeBookingStore{}
	logs := &fakeSyncLogStore{}
	provider := &fakeProvider{
		fetchFunc: func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
			return &providers.FetchResult{}, nil
		},
	}

	c := newTestCoordinator(connStore, bookings, logs, provider)
	s := NewScheduler(c, connStore, 0, 2)

	// Hold the lock as if a manual run were in flight
	if !c.Locks().TryAcquire("conn-1") {
		t.Fatal("Could not take the lock")
	}
	defer c.Locks().Release("conn-1")

	result, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Skipped != 1 || result.Succeeded != 0 {
		t.Errorf("Expected the held connection to be skipped, got %+v", result)
	}
}

func TestScheduler_RunDueHonorsCadence(t *testing.T) {
	due := enabledConnection()

	fresh := enabledConnection()
	fresh.ID = "conn-fresh"
	now := time.Now().UTC()
	fresh.LastSyncAt = &now

	connStore := newFakeConnectionStore(due, fresh)
	bookings := &fakeBookingStore{}
	logs := &fakeSyncLogStore{}

	var ran int64
	provider := &fakeProvider{
		fetchFunc: func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
			atomic.AddInt64(&ran, 1)
			return &providers.FetchResult{}, nil
		},
	}

	c := newTestCoordinator(connStore, bookings, logs, provider)
	s := NewScheduler(c, connStore, 0, 2)

	s.runDue(context.Background())

	if got := atomic.LoadInt64(&ran); got != 1 {
		t.Errorf("Expected only the due connection to run, got %d runs", got)
	}
	if len(bookings.logs) != 1 {
		t.Fatalf("Expected 1 sync log, got %d", len(bookings.logs))
	}
	if bookings.logs[0].SyncType != constants.SyncTypeAuto {
		t.Errorf("Scheduled runs must record auto sync type, got %s", bookings.logs[0].SyncType)
	}
}
