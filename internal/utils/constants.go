package utils

// Retry behavior
const (
	// MaxRetryDelayMs caps the exponential backoff delay
	MaxRetryDelayMs = 64000
	// DefaultMaxAttempts is the per-request retry budget
	DefaultMaxAttempts = 5
	// DefaultRetryBaseDelayMs is the initial backoff delay
	DefaultRetryBaseDelayMs = 2000
)

// Concurrency
const (
	// DefaultDownloadConcurrency bounds simultaneous fetch+store operations
	// across the whole run. This, not per-team limits, is what keeps the
	// remote API happy.
	DefaultDownloadConcurrency = 4
)

// Discovery
const (
	// DefaultForbiddenRetries is how many extra channel-listing attempts are
	// made after a 403 before falling back to the primary channel
	DefaultForbiddenRetries = 2
	// DefaultForbiddenRetryDelayMs is the fixed delay between those attempts
	DefaultForbiddenRetryDelayMs = 2000
)
