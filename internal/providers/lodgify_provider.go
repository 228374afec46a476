package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stayharbor/channelsync/internal/constants"
	gormModels "stayharbor/channelsync/internal/models/gorm"
)

const (
	lodgifyPageSize = 50
	// Guards against infinite pagination on a misbehaving server
	lodgifyMaxPages = 50
)

// LodgifyProvider fetches reservations through the Lodgify REST API
type LodgifyProvider struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewLodgifyProvider creates a new Lodgify API provider
func NewLodgifyProvider() *LodgifyProvider {
	baseURL := os.Getenv("LODGIFY_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.lodgify.com/v2" // Default
	}

	return &LodgifyProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
		// Lodgify enforces per-key request limits; pace outbound calls
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// ProviderType returns the provider type identifier
func (p *LodgifyProvider) ProviderType() string {
	return constants.ConnectionTypeAPI
}

// FetchEvents pages through the reservations endpoint until an empty page
// or the page ceiling
func (p *LodgifyProvider) FetchEvents(ctx context.Context, conn *gormModels.ChannelConnection) (*FetchResult, error) {
	if conn.APIKey == nil || *conn.APIKey == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: "connection has no API key configured",
		}
	}

	result := &FetchResult{}
	for page := 1; ; page++ {
		if page > lodgifyMaxPages {
			return nil, &ProviderError{
				Code:    constants.ErrCodePageLimit,
				Message: constants.GetSyncErrorMessage(constants.ErrCodePageLimit),
				Details: fmt.Sprintf("stopped after %d pages", lodgifyMaxPages),
			}
		}

		var listResp lodgifyBookingListResponse
		endpoint := fmt.Sprintf("/reservations/bookings?page=%d&size=%d", page, lodgifyPageSize)
		if err := p.doGET(ctx, *conn.APIKey, endpoint, &listResp); err != nil {
			return nil, err
		}

		if len(listResp.Items) == 0 {
			break
		}

		for _, item := range listResp.Items {
			if conn.ExternalPropertyID != nil && *conn.ExternalPropertyID != "" &&
				strconv.FormatInt(item.PropertyID, 10) != *conn.ExternalPropertyID {
				continue
			}

			event, warn := p.mapBooking(item)
			if warn != "" {
				result.Warnings = append(result.Warnings, warn)
				continue
			}
			if event != nil {
				result.Events = append(result.Events, *event)
			}
		}
	}

	return result, nil
}

// TestKey validates an API key for connection setup, independent of a sync
// run. A rejected key is a negative result, not an error.
func (p *LodgifyProvider) TestKey(ctx context.Context, apiKey string) (*KeyTestResult, error) {
	if apiKey == "" {
		return &KeyTestResult{Valid: false, Message: "API key is empty"}, nil
	}

	var listResp lodgifyPropertyListResponse
	err := p.doGET(ctx, apiKey, fmt.Sprintf("/properties?page=1&size=%d", lodgifyPageSize), &listResp)
	if err != nil {
		if IsAuthError(err) {
			return &KeyTestResult{
				Valid:   false,
				Message: constants.GetSyncErrorMessage(constants.ErrCodeInvalidAPIKey),
			}, nil
		}
		return nil, err
	}

	result := &KeyTestResult{
		Valid:   true,
		Message: fmt.Sprintf("Key is valid, %d properties visible", len(listResp.Items)),
	}
	for _, item := range listResp.Items {
		result.Properties = append(result.Properties, LodgifyProperty{
			ID:   strconv.FormatInt(item.ID, 10),
			Name: item.Name,
		})
	}
	return result, nil
}

// mapBooking maps Lodgify's status vocabulary onto the engine's
func (p *LodgifyProvider) mapBooking(item lodgifyBookingItem) (*ExternalEvent, string) {
	var status string
	switch strings.ToLower(item.Status) {
	case "booked", "confirmed":
		status = constants.BookingStatusBooked
	case "tentative", "open":
		status = constants.BookingStatusTentative
	case "unavailable", "closed":
		status = constants.BookingStatusBlocked
	case "declined", "cancelled", "deleted":
		// Not part of the calendar
		return nil, ""
	default:
		return nil, fmt.Sprintf("booking %d: unknown status %q, skipped", item.ID, item.Status)
	}

	start, err := time.Parse("2006-01-02", item.Arrival)
	if err != nil {
		return nil, fmt.Sprintf("booking %d: unparseable arrival %q, skipped", item.ID, item.Arrival)
	}
	end, err := time.Parse("2006-01-02", item.Departure)
	if err != nil {
		return nil, fmt.Sprintf("booking %d: unparseable departure %q, skipped", item.ID, item.Departure)
	}
	if !start.Before(end) {
		return nil, fmt.Sprintf("booking %d: empty or inverted date range, skipped", item.ID)
	}

	return &ExternalEvent{
		ExternalUID: strconv.FormatInt(item.ID, 10),
		StartDate:   start.UTC(),
		EndDate:     end.UTC(),
		GuestName:   item.Guest.Name,
		Status:      status,
		Raw:         fmt.Sprintf("id=%d status=%s arrival=%s departure=%s", item.ID, item.Status, item.Arrival, item.Departure),
	}, ""
}

// doGET performs an authenticated GET against the Lodgify API
func (p *LodgifyProvider) doGET(ctx context.Context, apiKey, endpoint string, result interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeTimeout,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeTimeout),
			Err:     err,
		}
	}

	url := p.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("X-ApiKey", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		code := constants.ErrCodeNetworkError
		if ctx.Err() == context.DeadlineExceeded {
			code = constants.ErrCodeTimeout
		}
		return &ProviderError{
			Code:    code,
			Message: constants.GetSyncErrorMessage(code),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := p.buildHTTPError(resp.StatusCode, endpoint, resp.Body); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeMalformedFeed,
			Message: "failed to decode response",
			Err:     err,
		}
	}

	return nil
}

// buildHTTPError creates appropriate error based on status code
func (p *LodgifyProvider) buildHTTPError(statusCode int, endpoint string, body io.Reader) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyBytes, _ := io.ReadAll(io.LimitReader(body, 4096))
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeInvalidAPIKey),
			Details: string(bodyBytes),
		}
	case statusCode == http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeRateLimited),
			Details: string(bodyBytes),
		}
	case statusCode >= 500:
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Details: string(bodyBytes),
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeMalformedFeed,
			Message: fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Details: string(bodyBytes),
		}
	}
}

// KeyTestResult is the outcome of a connection-setup key validation
type KeyTestResult struct {
	Valid      bool              `json:"valid"`
	Properties []LodgifyProperty `json:"properties,omitempty"`
	Message    string            `json:"message"`
}

// LodgifyProperty identifies one external listing visible to an API key
type LodgifyProperty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lodgify API response structures

type lodgifyBookingListResponse struct {
	Count int64                `json:"count"`
	Items []lodgifyBookingItem `json:"items"`
}

type lodgifyBookingItem struct {
	ID         int64        `json:"id"`
	PropertyID int64        `json:"property_id"`
	Arrival    string       `json:"arrival"`
	Departure  string       `json:"departure"`
	Status     string       `json:"status"`
	Guest      lodgifyGuest `json:"guest"`
}

type lodgifyGuest struct {
	Name string `json:"name"`
}

type lodgifyPropertyListResponse struct {
	Count int64                 `json:"count"`
	Items []lodgifyPropertyItem `json:"items"`
}

type lodgifyPropertyItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
