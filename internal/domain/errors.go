package domain

// DomainError is a storefront error with a stable code. Handlers map
// codes to HTTP statuses; the message is safe to show to the user.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Is matches by code so errors.Is works against the sentinel values below
// even when the message carries request-specific detail.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

var (
	// ErrNotFound also covers resources owned by another user: an
	// ownership mismatch must be indistinguishable from non-existence.
	ErrNotFound          = NewDomainError("NOT_FOUND", "resource not found")
	ErrInvalidQuantity   = NewDomainError("INVALID_QUANTITY", "there must be at least 1 item in stock")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "not enough items in stock")
	ErrEmptyOrder        = NewDomainError("EMPTY_ORDER", "cart is empty")
	ErrNoActiveOrder     = NewDomainError("NO_ACTIVE_ORDER", "no active cart found")
	ErrForbidden         = NewDomainError("FORBIDDEN", "not enough rights")
	ErrUnauthorized      = NewDomainError("UNAUTHORIZED", "authentication required")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "invalid input provided")
)
