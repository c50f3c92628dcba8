package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todosync/internal/application"
	"todosync/internal/domain/entity"
	"todosync/internal/livequery"
	"todosync/internal/session"
)

type memTasks struct {
	mu     sync.Mutex
	tasks  []entity.Task
	nextID int
}

func (m *memTasks) Create(_ context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = "t-" + strconv.Itoa(m.nextID)
	m.tasks = append(m.tasks, *t)
	return nil
}

func (m *memTasks) ListByOwner(_ context.Context, userID string) ([]entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) SetCompleted(_ context.Context, userID, taskID string, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].UserID == userID && m.tasks[i].ID == taskID {
			m.tasks[i].Completed = completed
		}
	}
	return nil
}

func (m *memTasks) Delete(_ context.Context, userID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if !(t.UserID == userID && t.ID == taskID) {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
	return nil
}

type noopNotifier struct{}

func (noopNotifier) TaskListChanged(context.Context, string) {}

// asUser injects the identity the auth middleware would have resolved.
func asUser(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func newTaskRouter(t *testing.T) (*gin.Engine, *memTasks) {
	t.Helper()
	store := &memTasks{}
	svc := application.NewTaskService(store, noopNotifier{}, nil, nil, "")
	h := NewTaskHandler(svc, nil, nil, nil)

	r := gin.New()
	g := r.Group("/api", asUser("u1"))
	g.GET("/tasks", h.List)
	g.POST("/tasks", h.Create)
	g.POST("/tasks/:id/toggle", h.Toggle)
	g.DELETE("/tasks/:id", h.Delete)
	return r, store
}

func TestCreateTaskEndpointFireAndForget(t *testing.T) {
	r, store := newTaskRouter(t)

	w, env := postJSON(t, r, "/api/tasks", map[string]string{"text": "buy milk"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, true, env.Data["created"])
	require.Len(t, store.tasks, 1)
	assert.Equal(t, "u1", store.tasks[0].UserID)

	// Whitespace-only text is accepted at the transport but stored nowhere.
	w, env = postJSON(t, r, "/api/tasks", map[string]string{"text": "   "})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, false, env.Data["created"])
	assert.Len(t, store.tasks, 1)
}

func TestToggleTaskEndpoint(t *testing.T) {
	r, store := newTaskRouter(t)
	_, _ = postJSON(t, r, "/api/tasks", map[string]string{"text": "flip me"})
	require.Len(t, store.tasks, 1)
	id := store.tasks[0].ID

	w, _ := postJSON(t, r, "/api/tasks/"+id+"/toggle", map[string]bool{"completed": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.tasks[0].Completed)

	w, _ = postJSON(t, r, "/api/tasks/"+id+"/toggle", map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, store.tasks[0].Completed)
}

func TestDeleteTaskEndpointAbsentID(t *testing.T) {
	r, _ := newTaskRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/no-such-id", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "deleting an absent id is a no-op")
}

// scriptedFeed hands the stream handler a change channel the test
// drives directly.
type scriptedFeed struct {
	changes chan struct{}
}

func (f *scriptedFeed) Subscribe(context.Context, string) *livequery.Subscription {
	return livequery.NewSubscription(f.changes, nil)
}

type scriptedWatcher struct {
	events chan session.Event
}

func (w *scriptedWatcher) Watch(context.Context) *session.Watch {
	return session.NewWatch(w.events, nil)
}

func TestStreamEmitsFullReplacementSnapshots(t *testing.T) {
	store := &memTasks{}
	svc := application.NewTaskService(store, noopNotifier{}, nil, nil, "")
	feed := &scriptedFeed{changes: make(chan struct{})}
	watcher := &scriptedWatcher{events: make(chan session.Event)}
	h := NewTaskHandler(svc, feed, watcher, nil)

	r := gin.New()
	r.GET("/api/tasks/stream", asUser("u1"), h.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	require.NoError(t, store.Create(context.Background(), &entity.Task{UserID: "u1", Text: "first"}))
	require.NoError(t, store.Create(context.Background(), &entity.Task{UserID: "u2", Text: "someone else's"}))

	resp, err := http.Get(srv.URL + "/api/tasks/stream")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	readSnapshot := func() []entity.Task {
		t.Helper()
		for {
			line, rerr := reader.ReadString('\n')
			require.NoError(t, rerr)
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var tasks []entity.Task
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			require.NoError(t, json.Unmarshal([]byte(payload), &tasks))
			return tasks
		}
	}

	// The full current list arrives immediately, scoped to the
	// streaming identity.
	first := readSnapshot()
	require.Len(t, first, 1)
	assert.Equal(t, "first", first[0].Text)
	assert.Equal(t, "u1", first[0].UserID)

	// A change signal re-emits the complete list, never a diff.
	require.NoError(t, store.Create(context.Background(), &entity.Task{UserID: "u1", Text: "buy milk"}))
	feed.changes <- struct{}{}

	second := readSnapshot()
	require.Len(t, second, 2)
	texts := []string{second[0].Text, second[1].Text}
	assert.Contains(t, texts, "buy milk")
	for _, task := range second {
		assert.Equal(t, "u1", task.UserID, "a snapshot never carries another owner's task")
	}

	// Another identity's sign-out leaves the stream running.
	watcher.events <- session.Event{Type: session.SignedOut, UserID: "u2"}
	feed.changes <- struct{}{}
	third := readSnapshot()
	assert.Len(t, third, 2)

	// The streaming identity's sign-out ends it.
	watcher.events <- session.Event{Type: session.SignedOut, UserID: "u1"}
	for {
		if _, err = reader.ReadString('\n'); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, io.EOF)
}

func TestListTasksEndpointScopedToIdentity(t *testing.T) {
	r, store := newTaskRouter(t)
	store.tasks = []entity.Task{
		{ID: "t-a", UserID: "u1", Text: "mine"},
		{ID: "t-b", UserID: "u2", Text: "not mine"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mine")
	assert.NotContains(t, w.Body.String(), "not mine")
}
