package provider

// Exports for testing. These allow black-box tests to reach internal logic
// without modifying the public API.

var (
	ClassifyError    = classifyError
	IsRetryableError = isRetryableError
)
