package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/comix-bridge/internal/api/shared"
	"github.com/phrazzld/comix-bridge/internal/bridge"
	"github.com/phrazzld/comix-bridge/internal/task"
)

// TaskHandler lists and cancels in-flight tasks.
type TaskHandler struct {
	bridge   *bridge.Bridge
	registry *task.Registry
	logger   *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(b *bridge.Bridge, registry *task.Registry, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		bridge:   b,
		registry: registry,
		logger:   logger.With(slog.String("component", "task_handler")),
	}
}

// TaskListResponse is the JSON body of GET /api/tasks.
type TaskListResponse struct {
	Tasks []task.Entry `json:"tasks"`
}

// CancelResponse is the JSON body of DELETE /api/tasks/{handle}.
type CancelResponse struct {
	Handle    uuid.UUID `json:"handle"`
	Cancelled bool      `json:"cancelled"`
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: h.registry.Snapshot()})
}

// CancelTask handles DELETE /api/tasks/{handle}. Cancelling an unknown or
// already finished task is not an error; the body reports whether the
// request took effect.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	handle, err := uuid.Parse(chi.URLParam(r, "handle"))
	if err != nil {
		h.respondError(w, r, fmt.Errorf("%w: invalid task handle", ErrInvalidParameter))
		return
	}

	cancelled, err := h.bridge.CancelTask(handle)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.Debug("cancel requested",
		slog.String("trace_id", shared.GetTraceID(r.Context())),
		slog.String("task_id", handle.String()),
		slog.Bool("cancelled", cancelled))

	shared.RespondWithJSON(w, r, http.StatusOK, CancelResponse{Handle: handle, Cancelled: cancelled})
}

func (h *TaskHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r,
		MapErrorToStatusCode(err),
		GetSafeErrorMessage(err),
		ErrorCode(err),
		err)
}
