package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todosync/internal/application"
	"todosync/internal/livequery"
	"todosync/internal/session"
	"todosync/pkg/response"
	"todosync/pkg/validation"
)

// ChangeFeed is the slice of the live feed the stream handler needs:
// a change-signal subscription per identity.
type ChangeFeed interface {
	Subscribe(ctx context.Context, userID string) *livequery.Subscription
}

// AuthWatcher delivers auth-state transitions; the stream ends when a
// signed-out event arrives for its identity.
type AuthWatcher interface {
	Watch(ctx context.Context) *session.Watch
}

type TaskHandler struct {
	Svc      *application.TaskService
	Feed     ChangeFeed
	Sessions AuthWatcher
	Logger   *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, feed ChangeFeed, sessions AuthWatcher, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Feed: feed, Sessions: sessions, Logger: logger}
}

type createTaskRequest struct {
	Text string `json:"text"`
}

type toggleTaskRequest struct {
	// Completed carries the caller's current value; the flip is always
	// to its opposite.
	Completed bool `json:"completed"`
}

// List GET /api/tasks returns a one-shot snapshot of the identity's tasks.
func (h *TaskHandler) List(c *gin.Context) {
	uid := c.GetString("userID")
	tasks, err := h.Svc.List(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to list tasks", nil)
		return
	}
	response.Success(c, http.StatusOK, tasks, "tasks", map[string]any{"count": len(tasks)})
}

// Create POST /api/tasks. Fire-and-forget contract: the caller has
// already cleared its input, so a failed insert is logged here and the
// next feed emission simply won't contain the task. Whitespace-only
// text never reaches the store.
func (h *TaskHandler) Create(c *gin.Context) {
	uid := c.GetString("userID")
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), uid, req.Text)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", uid).Error("task create failed")
		}
		response.Success[any](c, http.StatusAccepted, map[string]any{"created": false}, "task accepted", nil)
		return
	}
	response.Success[any](c, http.StatusAccepted, map[string]any{"created": t != nil}, "task accepted", nil)
}

// Toggle POST /api/tasks/:id/toggle. Unconditional flip; a failure is
// absorbed; the feed just never re-emits and the caller's view stays.
func (h *TaskHandler) Toggle(c *gin.Context) {
	uid := c.GetString("userID")
	var req toggleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Toggle(c.Request.Context(), uid, c.Param("id"), req.Completed); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Warn("task toggle failed")
	}
	response.Success[any](c, http.StatusOK, map[string]any{"toggled": true}, "task toggled", nil)
}

// Delete DELETE /api/tasks/:id. No confirmation, no undo; a missing id
// is a no-op.
func (h *TaskHandler) Delete(c *gin.Context) {
	uid := c.GetString("userID")
	if err := h.Svc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Warn("task delete failed")
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "task deleted", nil)
}

// Search GET /api/tasks/search?q=
func (h *TaskHandler) Search(c *gin.Context) {
	uid := c.GetString("userID")
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), uid, q, 10)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// Stream GET /api/tasks/stream is the live query. Emits the full task
// list immediately, then a complete replacement snapshot on every
// change signal. The stream ends on client disconnect or when the
// identity signs out; both subscriptions are released on return.
func (h *TaskHandler) Stream(c *gin.Context) {
	uid := c.GetString("userID")
	ctx := c.Request.Context()

	sub := h.Feed.Subscribe(ctx, uid)
	defer sub.Cancel()
	watch := h.Sessions.Watch(ctx)
	defer watch.Cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	emit := func() {
		tasks, err := h.Svc.List(ctx, uid)
		if err != nil {
			// Read errors keep the stream alive; the next change signal
			// retries the snapshot.
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("user_id", uid).Warn("task snapshot read failed")
			}
			return
		}
		c.SSEvent("tasks", tasks)
		c.Writer.Flush()
	}
	emit()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Changes:
			if !ok {
				return
			}
			emit()
		case ev, ok := <-watch.Events:
			if !ok {
				return
			}
			if ev.Type == session.SignedOut && ev.UserID == uid {
				return
			}
		}
	}
}
