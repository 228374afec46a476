package syncengine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"stayharbor/channelsync/internal/constants"
	gormModels "stayharbor/channelsync/internal/models/gorm"
	"stayharbor/channelsync/internal/providers"
)

// In-memory stores for coordinator tests

type statusUpdate struct {
	connectionID string
	status       string
	message      string
}

type fakeConnectionStore struct {
	mu      sync.Mutex
	conns   map[string]gormModels.ChannelConnection
	updates []statusUpdate
}

func newFakeConnectionStore(conns ...gormModels.ChannelConnection) *fakeConnectionStore {
	s := &fakeConnectionStore{conns: make(map[string]gormModels.ChannelConnection)}
	for _, c := range conns {
		s.conns[c.ID] = c
	}
	return s
}

func (s *fakeConnectionStore) GetByID(ctx context.Context, id string) (*gormModels.ChannelConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[id]
	if !ok {
		return nil, nil
	}
	copied := c
	return &copied, nil
}

func (s *fakeConnectionStore) ListEnabled(ctx context.Context) ([]gormModels.ChannelConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []gormModels.ChannelConnection
	for _, c := range s.conns {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeConnectionStore) UpdateSyncStatus(ctx context.Context, id string, at time.Time, status string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, statusUpdate{connectionID: id, status: status, message: message})
	if c, ok := s.conns[id]; ok {
		c.LastSyncAt = &at
		c.LastSyncStatus = &status
		c.LastSyncMessage = &message
		s.conns[id] = c
	}
	return nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings []gormModels.Booking
	logs     []gormModels.SyncLog
	nextID   int
}

func (s *fakeBookingStore) ListByProperty(ctx context.Context, propertyID string) ([]gormModels.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []gormModels.Booking
	for _, b := range s.bookings {
		if b.PropertyID == propertyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ApplyRun(ctx context.Context, adds []gormModels.Booking, updates []gormModels.Booking, logEntry *gormModels.SyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, add := range adds {
		s.nextID++
		add.ID = "b-" + strconv.Itoa(s.nextID)
		s.bookings = append(s.bookings, add)
	}
	for _, upd := range updates {
		for i := range s.bookings {
			if s.bookings[i].ID == upd.ID {
				s.bookings[i] = upd
			}
		}
	}
	s.logs = append(s.logs, *logEntry)
	return nil
}

type fakeSyncLogStore struct {
	mu      sync.Mutex
	entries []gormModels.SyncLog
}

func (s *fakeSyncLogStore) Insert(ctx context.Context, logEntry *gormModels.SyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *logEntry)
	return nil
}

func (s *fakeSyncLogStore) List(ctx context.Context, connectionID string, limit int) ([]gormModels.SyncLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gormModels.SyncLog(nil), s.entries...), nil
}

func (s *fakeSyncLogStore) DeleteByConnection(ctx context.Context, connectionID string) error {
	return nil
}

type fakeProvider struct {
	fetchFunc func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error)
}

func (p *fakeProvider) FetchEvents(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
	return p.fetchFunc(ctx, conn)
}

func (p *fakeProvider) ProviderType() string {
	return constants.ConnectionTypeIcal
}

func enabledConnection() gormModels.ChannelConnection {
	return gormModels.ChannelConnection{
		ID:                  "conn-1",
		PropertyID:          "prop-1",
		Platform:            constants.PlatformAirbnb,
		ConnectionType:      constants.ConnectionTypeIcal,
		AutoSyncEnabled:     true,
		SyncIntervalMinutes: 60,
		Enabled:             true,
	}
}

func newTestCoordinator(conns *fakeConnectionStore, bookings *fakeBookingStore, logs *fakeSyncLogStore, provider providers.ChannelProvider) *Coordinator {
	return NewCoordinator(conns, bookings, logs, map[string]providers.ChannelProvider{
		constants.ConnectionTypeIcal: provider,
	}, nil)
}

func TestCoordinator_RunSyncSuccess(t *testing.T) {
	conns := newFakeConnectionStore(enabledConnection())
	bookings := &fakeBookingStore{}
	logs := &fakeSyncLogStore{}
	provider := &fakeProvider{
		fetchFunc: func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
			return &providers.FetchResult{
				Events: []providers.ExternalEvent{
					event("uid-1", date(2026, 3, 1), date(2026, 3, 5), constants.BookingStatusBooked),
					event("uid-2", date(2026, 3, 10), date(2026, 3, 12), constants.BookingStatusBlocked),
				},
			}, nil
		},
	}

	c := newTestCoordinator(conns, bookings, logs, provider)
	run, err := c.RunSync(context.Background(), "conn-1", constants.SyncTypeManual)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if run.Status != constants.SyncStatusSuccess {
		t.Errorf("Expected success, got %s (%s)", run.Status, run.Message)
	}
	if run.Added != 2 || run.Updated != 0 || run.Errors != 0 {
		t.Errorf("Expected added=2 updated=0 errors=0, got %+v", run)
	}
	if len(bookings.bookings) != 2 {
		t.Errorf("Expected 2 bookings persisted, got %d", len(bookings.bookings))
	}
	if len(bookings.logs) != 1 || bookings.logs[0].Status != constants.SyncStatusSuccess {
		t.Errorf("Expected one success sync log in the transaction, got %+v", bookings.logs)
	}
	if len(conns.updates) != 1 || conns.updates[0].status != constants.SyncStatusSuccess {
		t.Errorf("Expected connection status update to success, got %+v", conns.updates)
	}
	if c.Locks().IsHeld("conn-1") {
		t.Error("Lock must be released after the run")
	}
}

func TestCoordinator_PartialOnConflict(t *testing.T) {
	conns := newFakeConnectionStore(enabledConnection())
	bookings := &fakeBookingStore{
		bookings: []gormModels.Booking{
			booking("b1", "vrbo-9", constants.PlatformVrbo, date(2026, 3, 3), date(2026, 3, 8), constants.BookingStatusBooked),
		},
	}
	logs := &fakeSyncLogStore{}
	provider := &fakeProvider{
		fetchFunc: func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
			return &providers.FetchResult{
				Events: []providers.ExternalEvent{
					event("uid-1", date(2026, 3, 5), date(2026, 3, 10), constants.BookingStatusBooked),
					event("uid-2", date(2026, 4, 1), date(2026, 4, 5), constants.BookingStatusBooked),
				},
			}, nil
		},
	}

	c := newTestCoordinator(conns, bookings, logs, provider)
	run, err := c.RunSync(context.Background(), "conn-1", constants.SyncTypeManual)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if run.Status != constants.SyncStatusPartial {
		t.Errorf("Expected partial, got %s", run.Status)
	}
	if run.Added != 1 || run.Errors != 1 {
		t.Errorf("Expected added=1 errors=1, got added=%d errors=%d", run.Added, run.Errors)
	}
	// 1 pre-existing + 1 non-conflicting add
	if len(bookings.bookings) != 2 {
		t.Errorf("Expected 2 bookings in store, got %d", len(bookings.bookings))
	}
}

func TestCoordinator_ProviderFailureCompletesWithErrorLog(t *testing.T) {
	conns := newFakeConnectionStore(enabledConnection())
	bookings := &fakeBookingStore{}
	logs := &fakeSyncLogStore{}
	provider := &fakeProvider{
		fetchFunc: func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
			return nil, &providers.ProviderError{
				Code:    constants.ErrCodeNetworkError,
				Message: constants.GetSyncErrorMessage(constants.ErrCodeNetworkError),
			}
		},
	}

	c := newTestCoordinator(conns, bookings, logs, provider)
	run, err := c.RunSync(context.Background(), "conn-1", constants.SyncTypeManual)
	if err != nil {
		t.Fatalf("A provider failure must complete the run, got error %v", err)
	}

	if run.Status != constants.SyncStatusError {
		t.Errorf("Expected error status, got %s", run.Status)
	}
	if len(logs.entries) != 1 || logs.entries[0].Status != constants.SyncStatusError {
		t.Errorf("Expected one error sync log, got %+v", logs.entries)
	}
	if len(bookings.bookings) != 0 {
		t.Error("A failed fetch must not write bookings")
	}
	if len(conns.updates) != 1 || conns.updates[0].status != constants.SyncStatusError {
		t.Errorf("Expected connection status update to error, got %+v", conns.updates)
	}
}

func TestCoordinator_RejectsUnknownAndDisabled(t *testing.T) {
	disabled := enabledConnection()
	disabled.ID = "conn-2"
	disabled.Enabled = false

	conns := newFakeConnectionStore(enabledConnection(), disabled)
	c := newTestCoordinator(conns, &fakeBookingStore{}, &fakeSyncLogStore{}, &fakeProvider{
		fetchFunc: func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
			return &providers.FetchResult{}, nil
		},
	})

	if _, err := c.RunSync(context.Background(), "nope", constants.SyncTypeManual); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := c.RunSync(context.Background(), "conn-2", constants.SyncTypeManual); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}

func TestCoordinator_ConcurrentTriggersOneRuns(t *testing.T) {
	conns := newFakeConnectionStore(enabledConnection())
	bookings := &fakeBookingStore{}
	logs := &fakeSyncLogStore{}

	fetchStarted := make(chan struct{})
	releaseFetch := make(chan struct{})
	provider := &fakeProvider{
		fetchFunc: func(ctx context.Context, conn *gormModels.ChannelConnection) (*providers.FetchResult, error) {
			close(fetchStarted)
			<-releaseFetch
			return &providers.FetchResult{}, nil
		},
	}

	c := newTestCoordinator(conns, bookings, logs, provider)

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.RunSync(context.Background(), "conn-1", constants.SyncTypeManual)
		firstDone <- err
	}()

	<-fetchStarted

	// Second trigger while the first holds the lock
	_, err := c.RunSync(context.Background(), "conn-1", constants.SyncTypeManual)
	if !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for overlapping trigger, got %v", err)
	}

	close(releaseFetch)
	if err := <-firstDone; err != nil {
		t.Errorf("First run should succeed, got %v", err)
	}

	if len(bookings.logs) != 1 {
		t.Errorf("Exactly one run must have executed, got %d logs", len(bookings.logs))
	}
}
