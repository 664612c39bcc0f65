package cli

// Error codes for CLI output.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Config file unreadable or invalid
	ErrCodeStore        = "E003" // Local store unavailable
	ErrCodeInvalidArg   = "E004" // Malformed argument
	ErrCodeNotFound     = "E005" // Product or order not found
	ErrCodeBadTracking  = "E006" // Tracking code fails the format check
	ErrCodeCartItem     = "E007" // Cart line not present
	ErrCodeWriteFailed  = "E008" // Persisting local state failed
	ErrCodeValidation   = "E010" // Shipping form validation failed
	ErrCodeEmptyCart    = "E011" // Checkout with no items
	ErrCodeCheckout     = "E012" // Backend rejected or never confirmed the order
	ErrCodeInFlight     = "E013" // Checkout already in progress
	ErrCodeLoginFailed  = "E020" // Bad admin credentials
	ErrCodeUnauthorized = "E021" // Admin session missing or expired
	ErrCodeAdminRequest = "E022" // Admin request failed
	ErrCodeInvalidForm  = "E023" // Admin form validation failed
)
