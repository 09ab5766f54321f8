// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "file not found",
			wantStr: "[NOT_FOUND] file not found",
		},
		{
			name:    "merge_conflict_error",
			code:    errors.ErrMergeConflict,
			message: "merge failed",
			wantStr: "[MERGE_CONFLICT] merge failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details, "details should be initialized")
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	base := stderrors.New("exit status 128")

	err := errors.Wrapf(base, errors.ErrNetworkUnavailable, "fetch from %s failed", "origin")
	require.NotNil(t, err)

	assert.Equal(t, "[NETWORK_UNAVAILABLE] fetch from origin failed: exit status 128", err.Error())
	assert.True(t, stderrors.Is(err, base), "wrapped cause should be reachable")
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "nothing"), "wrapping nil yields nil")
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("sync: %w", errors.New(errors.ErrLocked, "held by another process"))

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrLocked, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrNotFound, "")))
	assert.True(t, errors.IsErrorCode(err, errors.ErrLocked))
	assert.Equal(t, errors.ErrLocked, errors.GetErrorCode(err))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
}

func TestGetHint(t *testing.T) {
	inner := errors.New(errors.ErrMergeConflict, "merge failed").
		WithHint("try --force-pull or --force-push")
	outer := errors.Wrap(inner, errors.ErrVCS, "sync aborted")

	assert.Equal(t, "try --force-pull or --force-push", errors.GetHint(outer))
	assert.Empty(t, errors.GetHint(stderrors.New("plain")))
}

func TestIsInformational(t *testing.T) {
	assert.True(t, errors.IsInformational(errors.New(errors.ErrAlreadyMarked, "x")))
	assert.True(t, errors.IsInformational(errors.New(errors.ErrNotMarked, "x")))
	assert.False(t, errors.IsInformational(errors.New(errors.ErrNotFound, "x")))
	assert.False(t, errors.IsInformational(nil))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrNotFound, "backup not found").WithDetail("selector", "20240101")
	assert.Equal(t, "20240101", err.Details["selector"])
}
