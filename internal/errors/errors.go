package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeInvalidPath        ErrorType = "INVALID_PATH"
	ErrorTypeAlreadyTracked     ErrorType = "ALREADY_TRACKED"
	ErrorTypeNotFound           ErrorType = "NOT_FOUND"
	ErrorTypeAlreadyInitialized ErrorType = "ALREADY_INITIALIZED"
	ErrorTypeNotInitialized     ErrorType = "NOT_INITIALIZED"
	ErrorTypeCommitNotFound     ErrorType = "COMMIT_NOT_FOUND"
	ErrorTypeInvalidRange       ErrorType = "INVALID_RANGE"
)

// Sentinels for errors.Is. Matching is by Type only.
var (
	ErrInvalidPath        = &Error{Type: ErrorTypeInvalidPath}
	ErrAlreadyTracked     = &Error{Type: ErrorTypeAlreadyTracked}
	ErrNotFound           = &Error{Type: ErrorTypeNotFound}
	ErrAlreadyInitialized = &Error{Type: ErrorTypeAlreadyInitialized}
	ErrNotInitialized     = &Error{Type: ErrorTypeNotInitialized}
	ErrCommitNotFound     = &Error{Type: ErrorTypeCommitNotFound}
	ErrInvalidRange       = &Error{Type: ErrorTypeInvalidRange}
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Type)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// TypeOf returns the ErrorType carried anywhere in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

func InvalidPath(path string, reason string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidPath,
		Message: fmt.Sprintf("invalid path %s: %s", path, reason),
		Details: path,
	}
}

func AlreadyTracked(path string) *Error {
	return &Error{
		Type:    ErrorTypeAlreadyTracked,
		Message: fmt.Sprintf("file is already tracked: %s", path),
		Details: path,
	}
}

func NotFound(name string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("file is not tracked: %s", name),
		Details: name,
	}
}

func AlreadyInitialized(dir string) *Error {
	return &Error{
		Type:    ErrorTypeAlreadyInitialized,
		Message: fmt.Sprintf("repository already initialized in %s", dir),
		Details: dir,
	}
}

func NotInitialized(dir string) *Error {
	return &Error{
		Type:    ErrorTypeNotInitialized,
		Message: fmt.Sprintf("not a repository (missing %s)", dir),
		Details: dir,
	}
}

func CommitNotFound(version int) *Error {
	return &Error{
		Type:    ErrorTypeCommitNotFound,
		Message: fmt.Sprintf("commit not found for version %d", version),
		Details: version,
	}
}

func InvalidRange(n, recorded int) *Error {
	return &Error{
		Type:    ErrorTypeInvalidRange,
		Message: fmt.Sprintf("invalid history range %d: %d versions recorded", n, recorded),
		Details: n,
	}
}
