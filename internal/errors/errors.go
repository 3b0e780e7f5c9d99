package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrOverdueBlocked is returned when the borrower holds an open loan past its due date.
	ErrOverdueBlocked = errors.New("user has overdue loans")
	// ErrBookNotFound is returned when a book does not exist.
	ErrBookNotFound = errors.New("book not found")
	// ErrNoCopiesAvailable is returned when every copy of a book is on loan.
	ErrNoCopiesAvailable = errors.New("no copies available")
	// ErrBorrowLimitExceeded is returned when the borrower is at their open loan limit.
	ErrBorrowLimitExceeded = errors.New("borrow limit exceeded")
	// ErrNoOpenLoan is returned when a return has no matching open loan.
	ErrNoOpenLoan = errors.New("no open loan for this book")
	// ErrAlreadyBorrowed is returned when the borrower already holds this book.
	ErrAlreadyBorrowed = errors.New("book already borrowed by user")
	// ErrCopyCountInvariant is returned when a copy count change would leave the book outside [0, total].
	ErrCopyCountInvariant = errors.New("copy count out of range")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when registering a taken username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidBook is returned when catalog input fails validation.
	ErrInvalidBook = errors.New("invalid book")
	// ErrNothingToUpdate is returned when a book update carries no fields.
	ErrNothingToUpdate = errors.New("nothing to update")
	// ErrStoreUnavailable is matched by every StoreError.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StoreError wraps a collaborator failure that is not a business outcome.
// It matches ErrStoreUnavailable with errors.Is and unwraps to the driver error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// Store wraps err as a StoreError for op. Nil stays nil and errors that are
// already StoreErrors are returned unchanged.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrOverdueBlocked):
		return NewHTTPError(http.StatusForbidden, ErrOverdueBlocked.Error(), "OVERDUE_BLOCKED")
	case errors.Is(err, ErrBookNotFound):
		return NewHTTPError(http.StatusNotFound, ErrBookNotFound.Error(), "BOOK_NOT_FOUND")
	case errors.Is(err, ErrNoCopiesAvailable):
		return NewHTTPError(http.StatusConflict, ErrNoCopiesAvailable.Error(), "NO_COPIES_AVAILABLE")
	case errors.Is(err, ErrBorrowLimitExceeded):
		return NewHTTPError(http.StatusForbidden, ErrBorrowLimitExceeded.Error(), "BORROW_LIMIT_EXCEEDED")
	case errors.Is(err, ErrNoOpenLoan):
		return NewHTTPError(http.StatusNotFound, ErrNoOpenLoan.Error(), "NO_OPEN_LOAN")
	case errors.Is(err, ErrAlreadyBorrowed):
		return NewHTTPError(http.StatusConflict, ErrAlreadyBorrowed.Error(), "ALREADY_BORROWED")
	case errors.Is(err, ErrCopyCountInvariant):
		return NewHTTPError(http.StatusConflict, ErrCopyCountInvariant.Error(), "COPY_COUNT_INVARIANT")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidBook):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_BOOK")
	case errors.Is(err, ErrNothingToUpdate):
		return NewHTTPError(http.StatusBadRequest, ErrNothingToUpdate.Error(), "NOTHING_TO_UPDATE")
	case errors.Is(err, ErrStoreUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, ErrStoreUnavailable.Error(), "STORE_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
