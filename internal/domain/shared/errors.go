package shared

// DomainError is a business rule failure with a stable machine code. The
// HTTP layer maps codes to status codes, the message is for humans.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinel errors shared across the domain. Compare with errors.Is.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInsufficientLots    = NewDomainError("INSUFFICIENT_LOTS", "Lot quantities cannot satisfy the requested quantity")
	ErrInvariantViolation  = NewDomainError("INVARIANT_VIOLATION", "Stock record invariant violated")
	ErrInvalidLocationPair = NewDomainError("INVALID_LOCATION_PAIR", "Source and destination locations must differ")
)
