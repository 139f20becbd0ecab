package api

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/comix-bridge/internal/api/shared"
	"github.com/phrazzld/comix-bridge/internal/archive"
	"github.com/phrazzld/comix-bridge/internal/bridge"
	"github.com/phrazzld/comix-bridge/internal/platform/logger"
	"github.com/phrazzld/comix-bridge/internal/resource"
	"github.com/phrazzld/comix-bridge/internal/task"
)

// TaskHandleHeader carries the handle of the task serving a request. It can
// be passed to DELETE /api/tasks/{handle}.
const TaskHandleHeader = "X-Task-Handle"

// ComicHandler serves the archive operations of the bridge.
type ComicHandler struct {
	bridge  *bridge.Bridge
	library *Library
	logger  *slog.Logger
}

// NewComicHandler creates a new ComicHandler.
func NewComicHandler(b *bridge.Bridge, library *Library, logger *slog.Logger) *ComicHandler {
	return &ComicHandler{
		bridge:  b,
		library: library,
		logger:  logger.With(slog.String("component", "comic_handler")),
	}
}

type comicQuery struct {
	Path string `validate:"required"`
	Name string `validate:"omitempty,max=255"`
}

type pageQuery struct {
	Path   string `validate:"required"`
	Width  int    `validate:"gte=0,lte=8192"`
	Height int    `validate:"gte=0,lte=8192"`
}

// HashResponse is the JSON body of GET /api/comics/hash.
type HashResponse struct {
	Size      int64  `json:"size"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

// GetMetadata handles GET /api/comics/metadata?path=&name=.
// The name defaults to the base name of path.
func (h *ComicHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	q := comicQuery{
		Path: r.URL.Query().Get("path"),
		Name: r.URL.Query().Get("name"),
	}
	if err := shared.ValidateRequest(&q); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), "", err)
		return
	}
	if q.Name == "" {
		q.Name = path.Base(q.Path)
	}

	fd, filePath, ok := h.open(w, r, q.Path)
	if !ok {
		return
	}

	res := &outcome[*bridge.ComicBook]{w: w}
	status, err := h.bridge.OpenComicBook(r.Context(), fd, q.Path, q.Name, res.callback())
	finishWith(h, w, r, fd, filePath, status, err, res, func(book *bridge.ComicBook) {
		shared.RespondWithJSON(w, r, http.StatusOK, book)
	})
}

// GetHash handles GET /api/comics/hash?path=.
func (h *ComicHandler) GetHash(w http.ResponseWriter, r *http.Request) {
	q := comicQuery{Path: r.URL.Query().Get("path")}
	if err := shared.ValidateRequest(&q); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), "", err)
		return
	}

	fd, filePath, ok := h.open(w, r, q.Path)
	if !ok {
		return
	}

	fh, err := h.bridge.ComicFileData(r.Context(), fd)
	switch {
	case err != nil:
		if bridge.IsIllegalArgument(err) {
			h.closeRejected(r, fd, filePath)
		}
		h.respondError(w, r, err)
	case fh == nil:
		h.respondError(w, r, task.ErrCancelled)
	default:
		shared.RespondWithJSON(w, r, http.StatusOK, HashResponse{
			Size:      fh.Size,
			Algorithm: fh.Algorithm,
			Digest:    hex.EncodeToString(fh.Digest),
		})
	}
}

// GetPage handles GET /api/comics/pages/{position}?path=&width=&height=.
// The page is returned as PNG, fitted within width x height when either
// bound is set.
func (h *ComicHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.ParseInt(chi.URLParam(r, "position"), 10, 64)
	if err != nil {
		h.respondError(w, r, fmt.Errorf("%w: position must be an integer", ErrInvalidParameter))
		return
	}

	q := pageQuery{Path: r.URL.Query().Get("path")}
	if q.Width, err = shared.QueryInt(r, "width", 0); err == nil {
		q.Height, err = shared.QueryInt(r, "height", 0)
	}
	if err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %s", ErrInvalidParameter, err.Error()))
		return
	}
	if err := shared.ValidateRequest(&q); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), "", err)
		return
	}

	fd, filePath, ok := h.open(w, r, q.Path)
	if !ok {
		return
	}

	res := &outcome[*archive.Image]{w: w}
	var status bridge.Status
	if q.Width > 0 || q.Height > 0 {
		status, err = h.bridge.Thumbnail(r.Context(), fd, position, q.Width, q.Height, res.callback())
	} else {
		status, err = h.bridge.Image(r.Context(), fd, position, res.callback())
	}
	finishWith(h, w, r, fd, filePath, status, err, res, func(img *archive.Image) {
		shared.RespondWithPNG(w, r, img.RGBA())
	})
}

func (h *ComicHandler) open(w http.ResponseWriter, r *http.Request, rel string) (int, string, bool) {
	fd, filePath, err := h.library.Open(rel)
	if err != nil {
		h.respondError(w, r, err)
		return -1, "", false
	}
	return fd, filePath, true
}

// closeRejected closes a descriptor the bridge refused. Once an operation
// was accepted the bridge owns the descriptor.
func (h *ComicHandler) closeRejected(r *http.Request, fd int, filePath string) {
	if err := resource.CloseDescriptor(fd); err != nil {
		logger.FromContext(r.Context(), h.logger).Warn("failed to close rejected descriptor",
			slog.String("file", path.Base(filePath)),
			slog.String("error", err.Error()))
	}
}

func (h *ComicHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r,
		MapErrorToStatusCode(err),
		GetSafeErrorMessage(err),
		ErrorCode(err),
		err)
}

// outcome records the callback of one blocking bridge call.
type outcome[T any] struct {
	w         http.ResponseWriter
	value     T
	err       *bridge.Error
	cancelled bool
}

func (o *outcome[T]) callback() bridge.Callback[T] {
	return bridge.CallbackFuncs[T]{
		TaskCreated: func(handle uuid.UUID) {
			o.w.Header().Set(TaskHandleHeader, handle.String())
		},
		Success:   func(v T) { o.value = v },
		Failure:   func(err *bridge.Error) { o.err = err },
		Cancelled: func() { o.cancelled = true },
	}
}

// finishWith writes the response of a callback-based bridge call.
func finishWith[T any](h *ComicHandler, w http.ResponseWriter, r *http.Request, fd int, filePath string,
	status bridge.Status, err error, res *outcome[T], ok func(T)) {
	switch {
	case err != nil:
		h.closeRejected(r, fd, filePath)
		h.respondError(w, r, err)
	case status == bridge.StatusCompleted:
		ok(res.value)
	case status == bridge.StatusCancelled:
		h.respondError(w, r, task.ErrCancelled)
	case res.err != nil:
		h.respondError(w, r, res.err)
	default:
		h.respondError(w, r, fmt.Errorf("operation finished with status %s", status))
	}
}
