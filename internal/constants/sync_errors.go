package constants

// Sync Error Codes
// These constants define specific error scenarios for channel providers
// and sync runs

// Provider-level errors (abort the run for one connection)
const (
	ErrCodeNetworkError  = "NETWORK_ERROR"
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeAuthFailed    = "AUTHENTICATION_FAILED"
	ErrCodeInvalidAPIKey = "INVALID_API_KEY"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeMalformedFeed = "MALFORMED_FEED"
	ErrCodeFeedTooLarge  = "FEED_TOO_LARGE"
	ErrCodePageLimit     = "PAGE_LIMIT_EXCEEDED"
)

// Run-level errors (rejected before any fetch happens)
const (
	ErrCodeSyncBusy           = "SYNC_IN_PROGRESS"
	ErrCodeConnectionDisabled = "CONNECTION_DISABLED"
	ErrCodeConnectionNotFound = "CONNECTION_NOT_FOUND"
)

// Per-event problems (accumulated, never abort the run)
const (
	ErrCodeParseWarning = "EVENT_PARSE_WARNING"
	ErrCodeConflict     = "DATE_CONFLICT"
)

// Error Messages
// Human-readable messages corresponding to error codes

var SyncErrorMessages = map[string]string{
	ErrCodeNetworkError:  "Unable to reach the platform. Please check the feed URL and network connectivity",
	ErrCodeTimeout:       "The platform did not respond in time",
	ErrCodeAuthFailed:    "Authentication with the platform failed",
	ErrCodeInvalidAPIKey: "The API key is invalid or has been revoked",
	ErrCodeRateLimited:   "Rate limit exceeded. The sync will be retried on the next scheduled run",
	ErrCodeMalformedFeed: "The platform returned a response that could not be parsed",
	ErrCodeFeedTooLarge:  "The feed exceeds the maximum allowed size",
	ErrCodePageLimit:     "The platform kept returning pages beyond the configured ceiling",

	ErrCodeSyncBusy:           "A sync for this connection is already in progress",
	ErrCodeConnectionDisabled: "This connection is disabled",
	ErrCodeConnectionNotFound: "No connection found with this ID",

	ErrCodeParseWarning: "One or more events in the feed could not be parsed and were skipped",
	ErrCodeConflict:     "One or more events overlap an existing booking from another source",
}

// GetSyncErrorMessage returns the human-readable message for an error code
func GetSyncErrorMessage(code string) string {
	if msg, exists := SyncErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
