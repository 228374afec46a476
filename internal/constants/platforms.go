package constants

// Distribution platforms a property can be listed on
const (
	PlatformAirbnb     = "airbnb"
	PlatformBookingCom = "booking_com"
	PlatformVrbo       = "vrbo"
	PlatformLodgify    = "lodgify"
)

// Connection types
const (
	ConnectionTypeIcal = "ical"
	ConnectionTypeAPI  = "api"
)

// Sync trigger types
const (
	SyncTypeManual = "manual"
	SyncTypeAuto   = "auto"
	SyncTypeBulk   = "bulk"
)

// Sync run / connection status values
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusError   = "error"
)

// Booking status values
const (
	BookingStatusBooked    = "booked"
	BookingStatusBlocked   = "blocked"
	BookingStatusTentative = "tentative"
	BookingStatusCancelled = "cancelled"
)

// ValidPlatforms lists every platform the engine can sync from
var ValidPlatforms = map[string]bool{
	PlatformAirbnb:     true,
	PlatformBookingCom: true,
	PlatformVrbo:       true,
	PlatformLodgify:    true,
}

// IsValidPlatform reports whether the given platform identifier is known
func IsValidPlatform(platform string) bool {
	return ValidPlatforms[platform]
}
