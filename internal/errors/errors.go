package errors

import "fmt"

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeConfig           ErrCode = "CONFIG"
	ErrCodeAuth             ErrCode = "AUTH"
	ErrCodeNotAuthenticated ErrCode = "NOT_AUTHENTICATED"
	ErrCodeTransport        ErrCode = "TRANSPORT"
	ErrCodeDecode           ErrCode = "DECODE"
	ErrCodeFilesystem       ErrCode = "FILESYSTEM"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConfig,
		Message: message,
	}
}

// NewAuthError creates a new authentication error
func NewAuthError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeAuth,
		Message: message,
		Err:     err,
	}
}

// NewNotAuthenticatedError creates an error for directory calls issued
// before a token is installed
func NewNotAuthenticatedError() *AppError {
	return &AppError{
		Code:    ErrCodeNotAuthenticated,
		Message: "no access token installed, authenticate first",
	}
}

// NewTransportError creates a new transport error
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeTransport,
		Message: message,
		Err:     err,
	}
}

// NewDecodeError creates a new decode error
func NewDecodeError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDecode,
		Message: message,
		Err:     err,
	}
}

// NewFilesystemError creates a new filesystem error
func NewFilesystemError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeFilesystem,
		Message: message,
		Err:     err,
	}
}

// IsConfig checks if the error is a configuration error
func IsConfig(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeConfig
	}
	return false
}

// IsAuth checks if the error is an authentication error
func IsAuth(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeAuth
	}
	return false
}

// IsNotAuthenticated checks if the error is a missing-token error
func IsNotAuthenticated(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeNotAuthenticated
	}
	return false
}
