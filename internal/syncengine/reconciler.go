package syncengine

import (
	"fmt"
	"sort"
	"time"

	"stayharbor/channelsync/internal/constants"
	gormModels "stayharbor/channelsync/internal/models/gorm"
	"stayharbor/channelsync/internal/providers"
)

// Conflict records an incoming event that overlaps an existing booking
// from a different source. The event is never written.
type Conflict struct {
	Event    providers.ExternalEvent
	Existing gormModels.Booking
}

// Describe renders both conflicting ranges for the sync log message
func (c *Conflict) Describe() string {
	return fmt.Sprintf("event %s (%s to %s) overlaps existing %s booking %s (%s to %s)",
		c.Event.ExternalUID,
		c.Event.StartDate.Format("2006-01-02"), c.Event.EndDate.Format("2006-01-02"),
		c.Existing.Platform, c.Existing.ID,
		c.Existing.StartDate.Format("2006-01-02"), c.Existing.EndDate.Format("2006-01-02"))
}

// Decisions is the reconciler's verdict for one sync run
type Decisions struct {
	Adds      []gormModels.Booking
	Updates   []gormModels.Booking
	Conflicts []Conflict
	Noops     int

	// Platform-sourced bookings absent from the new event set. Never
	// deleted automatically: transient feed omissions are common and
	// auto-deletion would silently lose data on a broken feed.
	MissingUIDs []string
}

type rangeKey struct {
	start, end time.Time
}

// Reconcile diffs freshly fetched events against the property's existing
// bookings and decides adds, updates, no-ops and conflicts.
//
// Pure and deterministic: for a fixed input pair the decisions are
// identical regardless of event ordering, because matching goes through
// key indexes and candidates are processed in sorted key order.
func Reconcile(conn *gormModels.ChannelConnection, existing []gormModels.Booking, events []providers.ExternalEvent) Decisions {
	var d Decisions

	// Index this platform's bookings by UID, and UID-less ones by exact
	// date range for feeds that carry no UID
	byUID := make(map[string]int)
	byRange := make(map[rangeKey]int)
	for i := range existing {
		b := &existing[i]
		if b.Platform != conn.Platform {
			continue
		}
		if uid := b.UID(); uid != "" {
			byUID[uid] = i
		} else {
			byRange[rangeKey{b.StartDate, b.EndDate}] = i
		}
	}

	// Sorted, key-deduplicated working set
	sorted := make([]providers.ExternalEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ExternalUID < sorted[j].ExternalUID })

	seen := make(map[string]bool, len(sorted))
	matchedUIDs := make(map[string]bool)
	updatedBookingIDs := make(map[string]bool)
	var candidates []providers.ExternalEvent

	// Pass 1: match events to bookings
	for _, ev := range sorted {
		if seen[ev.ExternalUID] {
			continue
		}
		seen[ev.ExternalUID] = true

		idx, ok := byUID[ev.ExternalUID]
		if !ok && providers.IsSyntheticUID(ev.ExternalUID) {
			// Feeds without UIDs fall back to exact-range matching
			// against this platform's UID-less bookings
			idx, ok = byRange[rangeKey{ev.StartDate, ev.EndDate}]
		}
		if !ok {
			candidates = append(candidates, ev)
			continue
		}

		b := existing[idx]
		matchedUIDs[ev.ExternalUID] = true
		if b.UID() != "" {
			matchedUIDs[b.UID()] = true
		}

		if b.StartDate.Equal(ev.StartDate) && b.EndDate.Equal(ev.EndDate) && b.Status == ev.Status {
			d.Noops++
			continue
		}

		updated := b
		updated.StartDate = ev.StartDate
		updated.EndDate = ev.EndDate
		updated.Status = ev.Status
		if ev.GuestName != "" {
			updated.GuestName = ev.GuestName
		}
		updatedBookingIDs[b.ID] = true
		d.Updates = append(d.Updates, updated)
	}

	// Pass 2: overlap-check candidate adds against every non-cancelled
	// booking of any platform that this run is not itself rewriting.
	// A date-shift of the same external reservation is not a conflict.
	for _, ev := range candidates {
		conflicting := -1
		for i := range existing {
			b := &existing[i]
			if b.Status == constants.BookingStatusCancelled || updatedBookingIDs[b.ID] {
				continue
			}
			if b.Overlaps(ev.StartDate, ev.EndDate) {
				conflicting = i
				break
			}
		}

		if conflicting >= 0 {
			d.Conflicts = append(d.Conflicts, Conflict{Event: ev, Existing: existing[conflicting]})
			continue
		}

		uid := ev.ExternalUID
		d.Adds = append(d.Adds, gormModels.Booking{
			PropertyID:  conn.PropertyID,
			ExternalUID: &uid,
			Platform:    conn.Platform,
			GuestName:   ev.GuestName,
			StartDate:   ev.StartDate,
			EndDate:     ev.EndDate,
			Status:      ev.Status,
		})
	}

	// Platform-sourced bookings that vanished from the feed
	for i := range existing {
		b := &existing[i]
		if b.Platform != conn.Platform {
			continue
		}
		if uid := b.UID(); uid != "" && !matchedUIDs[uid] {
			d.MissingUIDs = append(d.MissingUIDs, uid)
		}
	}
	sort.Strings(d.MissingUIDs)

	return d
}
