package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/storysync/internal/common"
	"github.com/dmitrijs2005/storysync/internal/dbx"
	"github.com/dmitrijs2005/storysync/internal/server/models"
	"github.com/dmitrijs2005/storysync/internal/server/repositories/stories"
	"github.com/dmitrijs2005/storysync/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/storysync/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeRepoMgr hands out the same in-memory repositories for any handle.
type fakeRepoMgr struct {
	users *fakeUsersRepo
	story *fakeStoriesRepo
	subs  *fakeSubsRepo
}

func newFakeRepoMgr() *fakeRepoMgr {
	return &fakeRepoMgr{
		users: &fakeUsersRepo{byEmail: map[string]*models.User{}},
		story: &fakeStoriesRepo{},
		subs:  &fakeSubsRepo{byEndpoint: map[string]*models.Subscription{}},
	}
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoMgr) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoMgr) Stories(dbx.DBTX) stories.Repository             { return m.story }
func (m *fakeRepoMgr) Subscriptions(dbx.DBTX) subscriptions.Repository { return m.subs }

type fakeUsersRepo struct {
	byEmail   map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeStoriesRepo struct {
	mu        sync.Mutex
	items     []*models.Story
	createErr error
	findErr   error
	listErr   error
	// hideOnFind makes the first lookup miss, simulating a concurrent insert.
	hideOnFind bool
}

func (f *fakeStoriesRepo) Create(_ context.Context, s *models.Story) (*models.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, it := range f.items {
		if s.IdempotencyKey != "" && it.UserID == s.UserID && it.IdempotencyKey == s.IdempotencyKey {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.items = append(f.items, s)
	return s, nil
}

func (f *fakeStoriesRepo) FindByIdempotencyKey(_ context.Context, userID, key string) (*models.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.hideOnFind {
		f.hideOnFind = false
		return nil, common.ErrorNotFound
	}
	for _, it := range f.items {
		if it.UserID == userID && it.IdempotencyKey == key {
			return it, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStoriesRepo) List(_ context.Context, limit int) ([]*models.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Story
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.items[i])
	}
	return out, nil
}

type fakeSubsRepo struct {
	byEndpoint map[string]*models.Subscription
	upsertErr  error
}

func (f *fakeSubsRepo) Upsert(_ context.Context, s *models.Subscription) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.byEndpoint[s.Endpoint] = s
	return nil
}

func (f *fakeSubsRepo) Delete(_ context.Context, userID, endpoint string) error {
	s, ok := f.byEndpoint[endpoint]
	if !ok || s.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.byEndpoint, endpoint)
	return nil
}

func (f *fakeSubsRepo) ListByUser(_ context.Context, userID string) ([]*models.Subscription, error) {
	var out []*models.Subscription
	for _, s := range f.byEndpoint {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakePhotos struct {
	puts       map[string][]byte
	putErr     error
	presignErr error
}

func newFakePhotos() *fakePhotos { return &fakePhotos{puts: map[string][]byte{}} }

func (f *fakePhotos) Put(_ context.Context, key string, data []byte, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts[key] = data
	return nil
}

func (f *fakePhotos) PresignGet(_ context.Context, key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://photos.example.com/" + key, nil
}
