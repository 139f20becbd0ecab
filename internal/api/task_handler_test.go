package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/comix-bridge/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndCancelTasks(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/tasks")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())

	registered := make(chan uuid.UUID, 1)
	done := make(chan task.Outcome, 1)
	go func() {
		blocking := task.TaskFunc{
			Name: "blocking",
			Fn: func(ctx context.Context, tok *task.Token) (any, error) {
				<-ctx.Done()
				return nil, tok.Checkpoint()
			},
		}
		done <- s.rt.Submit(context.Background(), blocking, func(h uuid.UUID) { registered <- h })
	}()
	handle := <-registered

	rec = s.do(t, http.MethodGet, "/api/tasks")
	require.Equal(t, http.StatusOK, rec.Code)
	var list TaskListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, handle, list.Tasks[0].Handle)
	assert.Equal(t, "blocking", list.Tasks[0].Type)

	rec = s.do(t, http.MethodDelete, "/api/tasks/"+handle.String())
	require.Equal(t, http.StatusOK, rec.Code)
	var resp CancelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, handle, resp.Handle)
	assert.True(t, resp.Cancelled)

	assert.Equal(t, task.OutcomeCancelled, (<-done).Kind)

	// The task is gone, so a second cancel has no effect.
	rec = s.do(t, http.MethodDelete, "/api/tasks/"+handle.String())
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Cancelled)
}

func TestCancelTaskInvalidHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		handle      string
		expectError string
	}{
		{name: "malformed", handle: "not-a-uuid", expectError: "invalid task handle"},
		{name: "nil handle", handle: uuid.Nil.String(), expectError: "Task cannot be null"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)

			rec := s.do(t, http.MethodDelete, "/api/tasks/"+tc.handle)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.expectError, decodeError(t, rec.Body.Bytes()).Error)
		})
	}
}
