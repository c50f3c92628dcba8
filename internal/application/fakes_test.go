package application

import (
	"context"
	"strconv"
	"sync"

	"todosync/internal/domain/entity"
	repo "todosync/internal/domain/repository"
	"todosync/internal/session"
)

// In-memory fakes standing in for Postgres and Redis.

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*entity.Identity
	byEmail map[string]*entity.Identity
	creates int
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]*entity.Identity{},
		byEmail: map[string]*entity.Identity{},
	}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if _, ok := f.byEmail[u.Email]; ok {
		return repo.ErrDuplicateEmail
	}
	f.nextID++
	u.ID = "user-" + strconv.Itoa(f.nextID)
	cp := *u
	f.byID[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeProfileRepo struct {
	mu         sync.Mutex
	rows       map[string]*entity.Profile
	createErr  error
	getErr     error
	photoCalls int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{rows: map[string]*entity.Profile{}}
}

func (f *fakeProfileRepo) Create(_ context.Context, p *entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.rows[p.UserID] = &cp
	return nil
}

func (f *fakeProfileRepo) Get(_ context.Context, userID string) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.rows[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) SetUsername(_ context.Context, userID, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[userID]
	if !ok {
		p = &entity.Profile{UserID: userID}
		f.rows[userID] = p
	}
	p.Username = username
	return nil
}

func (f *fakeProfileRepo) SetPhoto(_ context.Context, userID, photoBase64 string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photoCalls++
	p, ok := f.rows[userID]
	if !ok {
		p = &entity.Profile{UserID: userID}
		f.rows[userID] = p
	}
	p.PhotoBase64 = photoBase64
	return nil
}

type fakeSessions struct {
	mu      sync.Mutex
	rows    map[string]session.Session
	puts    int
	deletes int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: map[string]session.Session{}}
}

func (f *fakeSessions) Put(_ context.Context, sess session.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.rows[sess.UserID] = sess
	return nil
}

func (f *fakeSessions) Current(_ context.Context, userID string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.rows, userID)
	return nil
}

type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   []entity.Task
	creates int
	nextID  int
}

func (f *fakeTaskRepo) Create(_ context.Context, t *entity.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.nextID++
	t.ID = "task-" + strconv.Itoa(f.nextID)
	f.tasks = append(f.tasks, *t)
	return nil
}

func (f *fakeTaskRepo) ListByOwner(_ context.Context, userID string) ([]entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) SetCompleted(_ context.Context, userID, taskID string, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].UserID == userID && f.tasks[i].ID == taskID {
			f.tasks[i].Completed = completed
		}
	}
	return nil // zero matched rows is still success
}

func (f *fakeTaskRepo) Delete(_ context.Context, userID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tasks[:0]
	for _, t := range f.tasks {
		if !(t.UserID == userID && t.ID == taskID) {
			kept = append(kept, t)
		}
	}
	f.tasks = kept
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	userIDs []string
}

func (f *fakeNotifier) TaskListChanged(_ context.Context, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userIDs = append(f.userIDs, userID)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.userIDs)
}
