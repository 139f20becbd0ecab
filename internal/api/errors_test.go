package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/phrazzld/comix-bridge/internal/api/shared"
	"github.com/phrazzld/comix-bridge/internal/archive"
	"github.com/phrazzld/comix-bridge/internal/bridge"
	"github.com/phrazzld/comix-bridge/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	domain := &bridge.Error{Kind: bridge.KindDomain, Code: "corrupt_archive", Message: "corrupt", Err: archive.ErrCorruptArchive}
	internal := &bridge.Error{Kind: bridge.KindInternal, Code: bridge.CodeInternal, Err: errors.New("boom")}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"illegal argument", &bridge.Error{Kind: bridge.KindIllegalArgument, Message: "File descriptor is negative"}, http.StatusBadRequest},
		{"outside library", ErrOutsideLibrary, http.StatusBadRequest},
		{"invalid parameter", fmt.Errorf("%w: bad", ErrInvalidParameter), http.StatusBadRequest},
		{"page not found", fmt.Errorf("wrapped: %w", archive.ErrPageNotFound), http.StatusNotFound},
		{"missing file", fs.ErrNotExist, http.StatusNotFound},
		{"cancelled", task.ErrCancelled, http.StatusConflict},
		{"domain", domain, http.StatusUnprocessableEntity},
		{"stopped", &bridge.Error{Kind: bridge.KindInternal, Err: task.ErrRuntimeStopped}, http.StatusServiceUnavailable},
		{"internal", internal, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(errors.New("open /srv/library/secret.cbz: permission denied")))
	assert.Equal(t, "Archive is corrupt",
		GetSafeErrorMessage(fmt.Errorf("%w: p1.png: unexpected EOF", archive.ErrCorruptArchive)))
	assert.Equal(t, "Callback cannot be null",
		GetSafeErrorMessage(&bridge.Error{Kind: bridge.KindIllegalArgument, Message: "Callback cannot be null"}))
	assert.Equal(t, "Task was cancelled", GetSafeErrorMessage(task.ErrCancelled))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "page_not_found", ErrorCode(archive.ErrPageNotFound))
	assert.Equal(t, "cancelled", ErrorCode(task.ErrCancelled))
	assert.Equal(t, bridge.CodeInternal, ErrorCode(&bridge.Error{Kind: bridge.KindInternal, Code: bridge.CodeInternal}))
	assert.Empty(t, ErrorCode(errors.New("other")))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(&pageQuery{Path: "a.cbz", Width: -1})
	require.Error(t, err)
	assert.Equal(t, "Invalid width: too small", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
