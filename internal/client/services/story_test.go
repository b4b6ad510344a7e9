package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storysync/internal/client/client"
	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/submissions"
	"github.com/dmitrijs2005/storysync/internal/logging"
	"github.com/dmitrijs2005/storysync/internal/netx"
)

func float(v float64) *float64 { return &v }

func newStoryService(t *testing.T, fc *fakeClient, token string) (StoryService, *submissions.SQLiteRepository, *countingRequester) {
	t.Helper()
	repo := submissions.NewSQLiteRepository(setupDB(t))
	req := &countingRequester{}
	return NewStoryService(fc, staticToken{token: token}, repo, req, logging.NewDiscard()), repo, req
}

var jpeg = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestStory_AddOnline(t *testing.T) {
	fc := &fakeClient{}
	s, repo, req := newStoryService(t, fc, "tok")
	ctx := context.Background()

	out, err := s.Add(ctx, models.NewStory{Description: "sunset", Photo: jpeg})
	require.NoError(t, err)
	assert.False(t, out.Queued)
	assert.Equal(t, "tok", fc.LastToken)
	assert.Equal(t, "sunset", fc.LastStory.Description)
	assert.Zero(t, req.n)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStory_AddOfflineQueues(t *testing.T) {
	fc := &fakeClient{AddStoryErr: client.ErrUnavailable}
	s, repo, req := newStoryService(t, fc, "tok-snapshot")
	ctx := context.Background()

	out, err := s.Add(ctx, models.NewStory{Description: "rain", Lat: float(1.5), Lon: float(2.5), Photo: jpeg})
	require.NoError(t, err)
	require.True(t, out.Queued)
	assert.Equal(t, 1, req.n)

	p, err := repo.Get(ctx, out.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, "rain", p.Description)
	assert.Equal(t, float(1.5), p.Lat)
	assert.Equal(t, float(2.5), p.Lon)
	assert.Equal(t, "tok-snapshot", p.Token)
	assert.False(t, p.Synced)

	photo, mediaType, err := netx.DecodeDataURL(p.Photo)
	require.NoError(t, err)
	assert.Equal(t, jpeg, photo)
	assert.Equal(t, "image/jpeg", mediaType)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestStory_AddRejectedIsNotQueued(t *testing.T) {
	fc := &fakeClient{AddStoryErr: &client.RemoteError{StatusCode: 413, Message: "Payload too large"}}
	s, _, req := newStoryService(t, fc, "tok")
	ctx := context.Background()

	_, err := s.Add(ctx, models.NewStory{Description: "big", Photo: jpeg})
	require.ErrorIs(t, err, client.ErrRemoteRejected)
	assert.Zero(t, req.n)

	n, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStory_RequiresCredential(t *testing.T) {
	fc := &fakeClient{}
	s, _, _ := newStoryService(t, fc, "")

	_, err := s.Add(context.Background(), models.NewStory{Photo: jpeg})
	require.ErrorIs(t, err, client.ErrNoCredential)
	_, err = s.List(context.Background())
	require.ErrorIs(t, err, client.ErrNoCredential)
	assert.Zero(t, fc.AddStoryCalls)
}

func TestStory_CredentialError(t *testing.T) {
	repo := submissions.NewSQLiteRepository(setupDB(t))
	s := NewStoryService(&fakeClient{}, staticToken{err: errBoom}, repo, &countingRequester{}, logging.NewDiscard())

	_, err := s.List(context.Background())
	require.ErrorIs(t, err, errBoom)
}

func TestStory_List(t *testing.T) {
	fc := &fakeClient{StoriesRet: []models.Story{{ID: "s1", Name: "Dimas"}}}
	s, _, _ := newStoryService(t, fc, "tok")

	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fc.StoriesRet, got)
	assert.Equal(t, "tok", fc.LastToken)
}
