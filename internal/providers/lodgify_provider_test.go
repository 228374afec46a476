package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"stayharbor/channelsync/internal/constants"
	gormModels "stayharbor/channelsync/internal/models/gorm"
)

// testLodgifyProvider points the provider at a test server with the
// rate limiter opened up
func testLodgifyProvider(baseURL string) *LodgifyProvider {
	p := NewLodgifyProvider()
	p.BaseURL = baseURL
	p.limiter = rate.NewLimiter(rate.Inf, 1)
	return p
}

func lodgifyConnection(externalPropertyID string) *gormModels.ChannelConnection {
	apiKey := "test-key"
	conn := &gormModels.ChannelConnection{
		ID:             "conn-1",
		PropertyID:     "prop-1",
		Platform:       constants.PlatformLodgify,
		ConnectionType: constants.ConnectionTypeAPI,
		APIKey:         &apiKey,
		Enabled:        true,
	}
	if externalPropertyID != "" {
		conn.ExternalPropertyID = &externalPropertyID
	}
	return conn
}

func bookingItem(id int64, status, arrival, departure string) lodgifyBookingItem {
	return lodgifyBookingItem{
		ID:         id,
		PropertyID: 777,
		Arrival:    arrival,
		Departure:  departure,
		Status:     status,
		Guest:      lodgifyGuest{Name: "Guest " + strconv.FormatInt(id, 10)},
	}
}

func TestLodgifyProvider_FetchEventsPaginates(t *testing.T) {
	pages := map[string][]lodgifyBookingItem{
		"1": {
			bookingItem(1, "Booked", "2026-03-01", "2026-03-05"),
			bookingItem(2, "Confirmed", "2026-03-10", "2026-03-12"),
		},
		"2": {
			bookingItem(3, "Tentative", "2026-04-01", "2026-04-03"),
		},
		"3": {},
	}

	var requestedKeys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedKeys = append(requestedKeys, r.Header.Get("X-ApiKey"))
		items := pages[r.URL.Query().Get("page")]
		_ = json.NewEncoder(w).Encode(lodgifyBookingListResponse{
			Count: int64(len(items)),
			Items: items,
		})
	}))
	defer srv.Close()

	p := testLodgifyProvider(srv.URL)
	result, err := p.FetchEvents(context.Background(), lodgifyConnection("777"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Events) != 3 {
		t.Fatalf("Expected 3 events across pages, got %d", len(result.Events))
	}
	if len(requestedKeys) != 3 {
		t.Errorf("Expected 3 page requests, got %d", len(requestedKeys))
	}
	for _, key := range requestedKeys {
		if key != "test-key" {
			t.Errorf("Expected X-ApiKey header on every request, got %q", key)
		}
	}

	first := result.Events[0]
	if first.ExternalUID != "1" {
		t.Errorf("Expected UID from booking id, got %s", first.ExternalUID)
	}
	if !first.StartDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Wrong start date: %v", first.StartDate)
	}
	if result.Events[2].Status != constants.BookingStatusTentative {
		t.Errorf("Tentative should map through, got %s", result.Events[2].Status)
	}
}

func TestLodgifyProvider_FiltersByExternalProperty(t *testing.T) {
	other := bookingItem(9, "Booked", "2026-03-01", "2026-03-05")
	other.PropertyID = 999

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := []lodgifyBookingItem{}
		if r.URL.Query().Get("page") == "1" {
			items = []lodgifyBookingItem{
				bookingItem(1, "Booked", "2026-03-01", "2026-03-05"),
				other,
			}
		}
		_ = json.NewEncoder(w).Encode(lodgifyBookingListResponse{Items: items})
	}))
	defer srv.Close()

	p := testLodgifyProvider(srv.URL)
	result, err := p.FetchEvents(context.Background(), lodgifyConnection("777"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Events) != 1 || result.Events[0].ExternalUID != "1" {
		t.Errorf("Expected only the matching property's booking, got %+v", result.Events)
	}
}

func TestLodgifyProvider_StatusMapping(t *testing.T) {
	cases := []struct {
		status   string
		want     string
		skipped  bool
		wantWarn bool
	}{
		{"Booked", constants.BookingStatusBooked, false, false},
		{"confirmed", constants.BookingStatusBooked, false, false},
		{"Tentative", constants.BookingStatusTentative, false, false},
		{"Open", constants.BookingStatusTentative, false, false},
		{"Unavailable", constants.BookingStatusBlocked, false, false},
		{"Closed", constants.BookingStatusBlocked, false, false},
		{"Declined", "", true, false},
		{"Cancelled", "", true, false},
		{"SomethingNew", "", true, true},
	}

	p := testLodgifyProvider("http://unused")
	for _, tc := range cases {
		event, warn := p.mapBooking(bookingItem(1, tc.status, "2026-03-01", "2026-03-05"))
		if tc.skipped {
			if event != nil {
				t.Errorf("%s: expected skip, got event %+v", tc.status, event)
			}
			if tc.wantWarn && warn == "" {
				t.Errorf("%s: expected a warning", tc.status)
			}
			if !tc.wantWarn && warn != "" {
				t.Errorf("%s: expected silent skip, got %q", tc.status, warn)
			}
			continue
		}
		if event == nil {
			t.Errorf("%s: expected event, got warning %q", tc.status, warn)
			continue
		}
		if event.Status != tc.want {
			t.Errorf("%s: got %s, want %s", tc.status, event.Status, tc.want)
		}
	}
}

func TestLodgifyProvider_PageCeiling(t *testing.T) {
	// Server that never returns an empty page
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(lodgifyBookingListResponse{
			Items: []lodgifyBookingItem{bookingItem(1, "Booked", "2026-03-01", "2026-03-05")},
		})
	}))
	defer srv.Close()

	p := testLodgifyProvider(srv.URL)
	_, err := p.FetchEvents(context.Background(), lodgifyConnection(""))

	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Code != constants.ErrCodePageLimit {
		t.Errorf("Expected page_limit error, got %v", err)
	}
}

func TestLodgifyProvider_AuthErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"bad key"}`)
	}))
	defer srv.Close()

	p := testLodgifyProvider(srv.URL)
	_, err := p.FetchEvents(context.Background(), lodgifyConnection(""))

	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Code != constants.ErrCodeInvalidAPIKey {
		t.Errorf("Expected invalid_api_key, got %v", err)
	}
	if !IsAuthError(err) {
		t.Error("Auth failures must classify as auth errors")
	}
	if IsTransportError(err) {
		t.Error("Auth failures are not retryable")
	}
}

func TestLodgifyProvider_TestKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-ApiKey") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(lodgifyPropertyListResponse{
			Count: 2,
			Items: []lodgifyPropertyItem{
				{ID: 777, Name: "Beach House"},
				{ID: 888, Name: "Mountain Cabin"},
			},
		})
	}))
	defer srv.Close()

	p := testLodgifyProvider(srv.URL)

	good, err := p.TestKey(context.Background(), "good-key")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !good.Valid || len(good.Properties) != 2 {
		t.Errorf("Expected valid key with 2 properties, got %+v", good)
	}
	if good.Properties[0].ID != "777" || good.Properties[0].Name != "Beach House" {
		t.Errorf("Wrong property mapping: %+v", good.Properties[0])
	}

	// A rejected key is a negative result, not an error
	bad, err := p.TestKey(context.Background(), "bad-key")
	if err != nil {
		t.Fatalf("Rejected key must not error, got %v", err)
	}
	if bad.Valid {
		t.Error("Expected invalid result for rejected key")
	}
}
