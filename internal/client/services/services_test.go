package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storysync/internal/client/client"
	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/storage"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ---- fake client ----

// fakeClient implements client.Client and records the last call arguments.
type fakeClient struct {
	RegisterErr error
	LastRegName string

	LoginRet  *models.LoginResult
	LoginErr  error
	LastEmail string
	LastPass  string

	StoriesRet []models.Story
	StoriesErr error

	AddStoryErr   error
	AddStoryCalls int
	LastToken     string
	LastStory     models.NewStory
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Register(_ context.Context, name, email, password string) error {
	f.LastRegName, f.LastEmail, f.LastPass = name, email, password
	return f.RegisterErr
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*models.LoginResult, error) {
	f.LastEmail, f.LastPass = email, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) GetStories(_ context.Context, token string) ([]models.Story, error) {
	f.LastToken = token
	return f.StoriesRet, f.StoriesErr
}

func (f *fakeClient) AddStory(_ context.Context, token string, story models.NewStory) error {
	f.AddStoryCalls++
	f.LastToken, f.LastStory = token, story
	return f.AddStoryErr
}

func (f *fakeClient) Subscribe(context.Context, string, models.PushSubscription) error { return nil }
func (f *fakeClient) Unsubscribe(context.Context, string, string) error                { return nil }
func (f *fakeClient) Ping(context.Context) error                                       { return nil }

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token(context.Context) (string, error) { return s.token, s.err }

type countingRequester struct{ n int }

func (c *countingRequester) Request() { c.n++ }

var errBoom = errors.New("boom")
