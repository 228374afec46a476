package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	gormModels "stayharbor/channelsync/internal/models/gorm"
)

// ChannelProvider defines the interface for external booking sources
type ChannelProvider interface {
	// FetchEvents fetches every current event for the connection.
	// Per-event problems are reported as warnings on the result;
	// connection-level problems are returned as a *ProviderError.
	FetchEvents(ctx context.Context, conn *gormModels.ChannelConnection) (*FetchResult, error)

	// ProviderType returns the provider type identifier
	ProviderType() string
}

// ExternalEvent is one stay or blocked range fetched from a platform.
// Transient: produced for a single sync run, never persisted standalone.
type ExternalEvent struct {
	ExternalUID string    // platform-assigned, or synthetic for UID-less feeds
	StartDate   time.Time // inclusive
	EndDate     time.Time // exclusive
	GuestName   string    // best-effort, often absent from blocking-only feeds
	Status      string    // booked / blocked / tentative
	Raw         string    // original payload slice, for diagnostics
}

// FetchResult is the outcome of one provider fetch
type FetchResult struct {
	Events   []ExternalEvent
	Warnings []string
}

const syntheticUIDPrefix = "synthetic-"

// SyntheticUID derives a stable key for events whose feed carries no UID,
// so the same uncovered event matches the same booking on every run.
func SyntheticUID(start, end time.Time, summary string) string {
	h := fnv.New32a()
	h.Write([]byte(summary))
	return fmt.Sprintf("%s%s-%s-%08x", syntheticUIDPrefix,
		start.Format("20060102"), end.Format("20060102"), h.Sum32())
}

// IsSyntheticUID reports whether uid was derived rather than
// platform-assigned
func IsSyntheticUID(uid string) bool {
	return strings.HasPrefix(uid, syntheticUIDPrefix)
}
