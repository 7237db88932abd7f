package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *Error
		typ      ErrorType
	}{
		{"invalid path", InvalidPath("/tmp/x", "no such file"), ErrInvalidPath, ErrorTypeInvalidPath},
		{"already tracked", AlreadyTracked("/tmp/x"), ErrAlreadyTracked, ErrorTypeAlreadyTracked},
		{"not found", NotFound("x"), ErrNotFound, ErrorTypeNotFound},
		{"already initialized", AlreadyInitialized(".minigit"), ErrAlreadyInitialized, ErrorTypeAlreadyInitialized},
		{"not initialized", NotInitialized(".minigit"), ErrNotInitialized, ErrorTypeNotInitialized},
		{"commit not found", CommitNotFound(3), ErrCommitNotFound, ErrorTypeCommitNotFound},
		{"invalid range", InvalidRange(5, 2), ErrInvalidRange, ErrorTypeInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("doing something: %w", tt.err)

			assert.True(t, stderrors.Is(wrapped, tt.sentinel))
			assert.Equal(t, tt.typ, TypeOf(wrapped))
			assert.NotEmpty(t, tt.err.Error())
		})
	}

	assert.False(t, stderrors.Is(NotFound("x"), ErrCommitNotFound))
	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("plain")))
}
