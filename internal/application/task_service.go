package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"todosync/internal/domain/entity"
	repo "todosync/internal/domain/repository"
)

// ChangeNotifier signals live subscribers that an identity's task set
// changed. Implemented by the livequery feed.
type ChangeNotifier interface {
	TaskListChanged(ctx context.Context, userID string)
}

// TaskService owns task mutations and the one-shot list read behind the
// live feed. Every operation is scoped to the calling identity.
type TaskService struct {
	Repo         repo.TaskRepository
	Feed         ChangeNotifier
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESTasksIndex string
}

func NewTaskService(tasks repo.TaskRepository, feed ChangeNotifier, logger *logrus.Logger, es *elasticsearch.Client, esTasksIndex string) *TaskService {
	return &TaskService{
		Repo:         tasks,
		Feed:         feed,
		Logger:       logger,
		ES:           es,
		ESTasksIndex: esTasksIndex,
	}
}

// Create inserts a new task for the identity. Whitespace-only text is a
// no-op and never reaches the store; callers treat the nil task as
// "nothing happened".
func (s *TaskService) Create(ctx context.Context, userID, text string) (*entity.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	t := &entity.Task{UserID: userID, Text: text, Completed: false}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.Feed.TaskListChanged(ctx, userID)
	s.indexTask(ctx, t)
	return t, nil
}

// Toggle flips completed to the opposite of the caller-supplied current
// value. There is no optimistic read-back: the live feed emission is the
// only place the new state becomes visible. A vanished task is absorbed.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID string, current bool) error {
	if err := s.Repo.SetCompleted(ctx, userID, taskID, !current); err != nil {
		return err
	}
	s.Feed.TaskListChanged(ctx, userID)
	s.updateTaskIndex(ctx, taskID, !current)
	return nil
}

// Delete removes a task unconditionally. Deleting an id that no longer
// exists is a no-op.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.Repo.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	s.Feed.TaskListChanged(ctx, userID)
	s.deleteTaskIndex(ctx, taskID)
	return nil
}

// List returns the identity's full current task set, in whatever order
// the store yields; the service applies no sort of its own.
func (s *TaskService) List(ctx context.Context, userID string) ([]entity.Task, error) {
	return s.Repo.ListByOwner(ctx, userID)
}

// indexTask mirrors a task into Elasticsearch. Best-effort: failures
// are logged and the mutation that triggered them is unaffected.
func (s *TaskService) indexTask(ctx context.Context, t *entity.Task) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         t.ID,
		"user_id":    t.UserID,
		"text":       t.Text,
		"completed":  t.Completed,
		"created_at": t.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESTasksIndex, DocumentID: t.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", t.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("task_id", t.ID).Warn("es index response error")
	}
}

func (s *TaskService) updateTaskIndex(ctx context.Context, taskID string, completed bool) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	body := map[string]any{"doc": map[string]any{"completed": completed}}
	b, _ := json.Marshal(body)
	req := esapi.UpdateRequest{Index: s.ESTasksIndex, DocumentID: taskID, Body: strings.NewReader(string(b))}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", taskID).Warn("es update failed")
		}
		return
	}
	_ = res.Body.Close()
}

func (s *TaskService) deleteTaskIndex(ctx context.Context, taskID string) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESTasksIndex, DocumentID: taskID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", taskID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi-match query over the identity's own tasks.
// Degrades to an empty result set when Elasticsearch is not configured.
func (s *TaskService) Search(ctx context.Context, userID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"match": map[string]any{"text": q},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESTasksIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
