package shared

// DomainError is a business rule violation with a stable code. The HTTP
// layer maps the code to a status and shows Message to the shopper.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string { return e.Message }

// Is matches on Code, so errors.Is finds a sentinel through wrapping and
// across sentinels that share a code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")
	// ErrOperationCancelled ends a delayed operation abandoned by navigation
	ErrOperationCancelled = NewDomainError("OPERATION_CANCELLED", "Operation was cancelled before it completed")
)
