package model

// Standard error codes surfaced to presentation code.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeEmptyCart     = "EMPTY_CART"
	ErrCodeCorruptState  = "CORRUPT_STATE"
	ErrCodeInvalidStatus = "INVALID_STATUS"
)

// DomainError is a business-rule violation that the caller may show to
// the user. It never indicates partially applied state: a mutation that
// returns a DomainError has not changed anything.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidProduct = NewDomainError(ErrCodeInvalidInput, "Product is missing a required identifier")
	ErrEmptyCart      = NewDomainError(ErrCodeEmptyCart, "Cannot place an order from an empty cart")
	ErrInvalidStatus  = NewDomainError(ErrCodeInvalidStatus, "Order status must be pending, completed or cancelled")
)
