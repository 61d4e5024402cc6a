package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Job errors
	ErrJobFailed = fmt.Errorf("job failed")
	ErrCancelled = fmt.Errorf("operation cancelled")

	// Session errors
	ErrNoSession       = fmt.Errorf("no active session")
	ErrProjectNotFound = fmt.Errorf("project not found")
	ErrTrackNotFound   = fmt.Errorf("track not found")

	// Input validation errors
	ErrValidation        = fmt.Errorf("validation failed")
	ErrConsentRequired   = fmt.Errorf("consent required")
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrInvalidFlag       = fmt.Errorf("invalid flag value")
	ErrUnsupportedFormat = fmt.Errorf("unsupported format")
)
