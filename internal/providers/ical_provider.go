package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"

	"stayharbor/channelsync/internal/constants"
	gormModels "stayharbor/channelsync/internal/models/gorm"
)

const (
	icalFetchTimeout = 15 * time.Second
	// Defends against malicious or runaway feeds
	icalMaxFeedBytes = 5 * 1024 * 1024
)

// IcalProvider fetches bookings from platform iCal export feeds
// (Airbnb, Booking.com, VRBO). One VEVENT per stay or blocked range.
type IcalProvider struct {
	client       *http.Client
	maxFeedBytes int64
}

// NewIcalProvider creates a new iCal feed provider
func NewIcalProvider() *IcalProvider {
	return &IcalProvider{
		client: &http.Client{
			Timeout: icalFetchTimeout,
		},
		maxFeedBytes: icalMaxFeedBytes,
	}
}

// ProviderType returns the provider type identifier
func (p *IcalProvider) ProviderType() string {
	return constants.ConnectionTypeIcal
}

// FetchEvents downloads and parses the connection's iCal feed.
// Malformed individual VEVENT blocks are skipped and reported as warnings;
// an undecodable feed fails the whole fetch.
func (p *IcalProvider) FetchEvents(ctx context.Context, conn *gormModels.ChannelConnection) (*FetchResult, error) {
	if conn.IcalURL == nil || *conn.IcalURL == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMalformedFeed,
			Message: "connection has no iCal URL configured",
		}
	}

	body, err := p.download(ctx, *conn.IcalURL)
	if err != nil {
		return nil, err
	}

	return p.parseFeed(body)
}

// download fetches the feed with the size cap applied
func (p *IcalProvider) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "failed to create feed request",
			Err:     err,
		}
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := p.client.Do(req)
	if err != nil {
		code := constants.ErrCodeNetworkError
		if ctx.Err() == context.DeadlineExceeded {
			code = constants.ErrCodeTimeout
		}
		return nil, &ProviderError{
			Code:    code,
			Message: constants.GetSyncErrorMessage(code),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := p.classifyStatus(resp.StatusCode, url); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxFeedBytes+1))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "failed to read feed body",
			Err:     err,
		}
	}
	if int64(len(body)) > p.maxFeedBytes {
		return nil, &ProviderError{
			Code:    constants.ErrCodeFeedTooLarge,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeFeedTooLarge),
			Details: fmt.Sprintf("feed exceeds %d bytes", p.maxFeedBytes),
		}
	}

	return body, nil
}

// classifyStatus converts HTTP errors to ProviderError
func (p *IcalProvider) classifyStatus(statusCode int, url string) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeAuthFailed,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeAuthFailed),
			Details: fmt.Sprintf("HTTP %d from %s", statusCode, url),
		}
	case statusCode == http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeRateLimited),
			Details: fmt.Sprintf("HTTP %d from %s", statusCode, url),
		}
	case statusCode >= 500:
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeNetworkError),
			Details: fmt.Sprintf("HTTP %d from %s", statusCode, url),
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeMalformedFeed,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeMalformedFeed),
			Details: fmt.Sprintf("HTTP %d from %s", statusCode, url),
		}
	}
}

// parseFeed decodes the VCALENDAR and extracts one event per VEVENT
func (p *IcalProvider) parseFeed(body []byte) (*FetchResult, error) {
	cal, err := ics.NewDecoder(bytes.NewReader(body)).Decode()
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMalformedFeed,
			Message: constants.GetSyncErrorMessage(constants.ErrCodeMalformedFeed),
			Err:     err,
		}
	}

	result := &FetchResult{}
	for _, component := range cal.Children {
		if component.Name != ics.CompEvent {
			continue
		}

		event, warn := p.parseVEvent(component)
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
			continue
		}
		if event != nil {
			result.Events = append(result.Events, *event)
		}
	}

	return result, nil
}

// parseVEvent converts one VEVENT into an ExternalEvent.
// Returns a warning string instead of an event for unsupported or
// malformed blocks.
func (p *IcalProvider) parseVEvent(event *ics.Component) (*ExternalEvent, string) {
	uid := propValue(event, ics.PropUID)
	summary := propValue(event, ics.PropSummary)

	// Distribution-platform export feeds emit one VEVENT per stay;
	// recurring rules are out of contract
	if rrule := propValue(event, "RRULE"); rrule != "" {
		return nil, fmt.Sprintf("event %q: RRULE not supported, skipped", eventLabel(uid, summary))
	}

	rawStart := propValue(event, ics.PropDateTimeStart)
	if rawStart == "" {
		return nil, fmt.Sprintf("event %q: missing DTSTART, skipped", eventLabel(uid, summary))
	}
	start, err := parseIcalDate(rawStart)
	if err != nil {
		return nil, fmt.Sprintf("event %q: unparseable DTSTART %q, skipped", eventLabel(uid, summary), rawStart)
	}

	var end time.Time
	rawEnd := propValue(event, ics.PropDateTimeEnd)
	switch {
	case rawEnd != "":
		end, err = parseIcalDate(rawEnd)
		if err != nil {
			return nil, fmt.Sprintf("event %q: unparseable DTEND %q, skipped", eventLabel(uid, summary), rawEnd)
		}
	default:
		rawDur := propValue(event, "DURATION")
		if rawDur == "" {
			return nil, fmt.Sprintf("event %q: missing DTEND and DURATION, skipped", eventLabel(uid, summary))
		}
		dur, derr := parseIcalDuration(rawDur)
		if derr != nil {
			return nil, fmt.Sprintf("event %q: unparseable DURATION %q, skipped", eventLabel(uid, summary), rawDur)
		}
		end = start.Add(dur)
	}

	if !start.Before(end) {
		return nil, fmt.Sprintf("event %q: empty or inverted date range, skipped", eventLabel(uid, summary))
	}

	status := eventStatus(propValue(event, ics.PropStatus), summary)
	if status == constants.BookingStatusCancelled {
		// Cancelled entries are not imported
		return nil, ""
	}

	if uid == "" {
		uid = SyntheticUID(start, end, summary)
	}

	return &ExternalEvent{
		ExternalUID: uid,
		StartDate:   start,
		EndDate:     end,
		GuestName:   guestNameFromSummary(summary),
		Status:      status,
		Raw:         fmt.Sprintf("SUMMARY:%s DTSTART:%s DTEND:%s", summary, rawStart, rawEnd),
	}, ""
}

func propValue(event *ics.Component, name string) string {
	if prop := event.Props.Get(name); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}

func eventLabel(uid, summary string) string {
	if uid != "" {
		return uid
	}
	if summary != "" {
		return summary
	}
	return "unknown"
}

// eventStatus maps the STATUS property and summary heuristics onto the
// engine's status vocabulary. Airbnb/VRBO blocking feeds mark unavailable
// ranges with summaries like "Airbnb (Not available)".
func eventStatus(statusProp, summary string) string {
	switch strings.ToUpper(statusProp) {
	case "CANCELLED":
		return constants.BookingStatusCancelled
	case "TENTATIVE":
		return constants.BookingStatusTentative
	}

	lower := strings.ToLower(summary)
	switch {
	case strings.Contains(lower, "not available"),
		strings.Contains(lower, "unavailable"),
		strings.Contains(lower, "blocked"),
		strings.Contains(lower, "closed"):
		return constants.BookingStatusBlocked
	case strings.Contains(lower, "tentative"), strings.Contains(lower, "hold"):
		return constants.BookingStatusTentative
	default:
		return constants.BookingStatusBooked
	}
}

// guestNameFromSummary extracts a best-effort guest name from summaries
// like "Reserved - John D" or "John D (HMABCDEF12)"
func guestNameFromSummary(summary string) string {
	s := strings.TrimSpace(summary)
	lower := strings.ToLower(s)
	if s == "" || lower == "reserved" || lower == "booked" ||
		strings.Contains(lower, "not available") || strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "blocked") || strings.Contains(lower, "closed") {
		return ""
	}

	if idx := strings.Index(s, " - "); idx >= 0 {
		s = strings.TrimSpace(s[idx+3:])
	}
	if idx := strings.Index(s, " ("); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	return s
}

// parseIcalDate parses DATE and DATE-TIME property values, normalized to
// a UTC date (the engine reconciles at date granularity)
func parseIcalDate(value string) (time.Time, error) {
	value = strings.TrimSuffix(strings.TrimSpace(value), "Z")

	formats := []string{
		"20060102T150405", // DateTime
		"20060102",        // Date only
	}

	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}

// parseIcalDuration parses the RFC 5545 duration subset that booking feeds
// emit (P1W, P3D, PT12H and combinations)
func parseIcalDuration(value string) (time.Duration, error) {
	s := strings.TrimSpace(value)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration: %s", value)
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	num := 0
	hasNum := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			hasNum = true
		case r == 'T':
			inTime = true
		case r == 'W' && !inTime:
			total += time.Duration(num) * 7 * 24 * time.Hour
			num, hasNum = 0, false
		case r == 'D' && !inTime:
			total += time.Duration(num) * 24 * time.Hour
			num, hasNum = 0, false
		case r == 'H' && inTime:
			total += time.Duration(num) * time.Hour
			num, hasNum = 0, false
		case r == 'M' && inTime:
			total += time.Duration(num) * time.Minute
			num, hasNum = 0, false
		case r == 'S' && inTime:
			total += time.Duration(num) * time.Second
			num, hasNum = 0, false
		default:
			return 0, fmt.Errorf("invalid duration: %s", value)
		}
	}
	if hasNum {
		return 0, fmt.Errorf("invalid duration: %s", value)
	}
	if neg {
		total = -total
	}
	return total, nil
}
