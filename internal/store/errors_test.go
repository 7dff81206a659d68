package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("lookup: %w", ErrNotFound), true},
		{"ErrUserNotFound", ErrUserNotFound, true},
		{"wrapped ErrTaskNotFound", fmt.Errorf("tick: %w", ErrTaskNotFound), true},
		{"store error around ErrTaskNotFound", NewStoreError("task", "get", "missing", ErrTaskNotFound), true},
		{"ErrDuplicate", ErrDuplicate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.False(t, IsDuplicateError(nil))
	assert.False(t, IsDuplicateError(ErrTaskNotFound))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", ErrDuplicate)))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("task", "find", "database error", originalErr)

	assert.Equal(t, "find operation on task failed: database error: database connection failed", storeErr.Error())
	assert.ErrorIs(t, storeErr, originalErr)

	bare := NewStoreError("user", "list", "scan failed", nil)
	assert.Equal(t, "list operation on user failed: scan failed", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
