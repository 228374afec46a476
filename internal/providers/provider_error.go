package providers

import (
	"errors"
	"fmt"

	"stayharbor/channelsync/internal/constants"
)

// ProviderError represents a provider-specific error
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the sync error code from err, or NETWORK_ERROR when
// the error is not a ProviderError
func ErrorCode(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return constants.ErrCodeNetworkError
}

// IsAuthError reports whether err means the credentials need operator action
func IsAuthError(err error) bool {
	code := ErrorCode(err)
	return code == constants.ErrCodeAuthFailed || code == constants.ErrCodeInvalidAPIKey
}

// IsTransportError reports whether err is retryable on the next scheduled run
func IsTransportError(err error) bool {
	switch ErrorCode(err) {
	case constants.ErrCodeNetworkError, constants.ErrCodeTimeout, constants.ErrCodeRateLimited:
		return true
	}
	return false
}
