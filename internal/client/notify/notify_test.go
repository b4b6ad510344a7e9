package notify

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storysync/internal/client/client"
	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storysync/internal/client/storage"
	"github.com/dmitrijs2005/storysync/internal/logging"
)

type fakeAPI struct {
	subscribed   []models.PushSubscription
	unsubscribed []string
	tokens       []string
	err          error
}

func (f *fakeAPI) Subscribe(_ context.Context, token string, sub models.PushSubscription) error {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return f.err
	}
	f.subscribed = append(f.subscribed, sub)
	return nil
}

func (f *fakeAPI) Unsubscribe(_ context.Context, token string, endpoint string) error {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return f.err
	}
	f.unsubscribed = append(f.unsubscribed, endpoint)
	return nil
}

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type displayFunc func(ctx context.Context, n models.Notification) error

func (f displayFunc) Show(ctx context.Context, n models.Notification) error { return f(ctx, n) }

var validSub = models.PushSubscription{
	Endpoint: "https://push.example.com/send/abc",
	Keys:     models.PushKeys{P256dh: "BNc...", Auth: "tBH..."},
}

func newGateway(t *testing.T, api *fakeAPI, token string) (*Gateway, metadata.Repository, *bytes.Buffer) {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "notify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var buf bytes.Buffer
	logger, err := logging.New(&buf, "debug", "text")
	require.NoError(t, err)

	meta := metadata.NewSQLiteRepository(db)
	return NewGateway(api, staticToken(token), meta, logger), meta, &buf
}

func TestDecode_FullPayload(t *testing.T) {
	n, err := Decode([]byte(`{
		"title": "New story",
		"options": {"body": "Dimas shared a story", "image": "https://cdn.example.com/p.jpg", "url": "/#/stories/s1", "storyId": "s1"}
	}`))
	require.NoError(t, err)

	want := DefaultNotification()
	want.Title = "New story"
	want.Body = "Dimas shared a story"
	want.Image = "https://cdn.example.com/p.jpg"
	want.Data = models.NotificationData{URL: "/#/stories/s1", StoryID: "s1"}

	if diff := cmp.Diff(want, n); diff != "" {
		t.Errorf("notification mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_PartialPayloadUsesDefaults(t *testing.T) {
	n, err := Decode([]byte(`{"title":"Hello"}`))
	require.NoError(t, err)

	assert.Equal(t, "Hello", n.Title)
	assert.Equal(t, DefaultBody, n.Body)
	assert.Equal(t, DefaultIcon, n.Icon)
	assert.Equal(t, DefaultIcon, n.Badge)
	assert.Equal(t, DefaultURL, n.Data.URL)
	assert.Equal(t, []int{200, 100, 200}, n.Vibrate)
	assert.False(t, n.RequireInteraction)
	require.Len(t, n.Actions, 2)
	assert.Equal(t, ActionOpen, n.Actions[0].Action)
	assert.Equal(t, ActionClose, n.Actions[1].Action)
}

func TestDecode_EmptyAndNull(t *testing.T) {
	for _, in := range []string{"", "   ", "null"} {
		n, err := Decode([]byte(in))
		require.NoError(t, err, "payload %q", in)
		assert.Equal(t, DefaultNotification(), n)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, in := range []string{"{not json", `"plain text"`, `[1,2]`, `{"title": 5}`} {
		n, err := Decode([]byte(in))
		require.ErrorIs(t, err, ErrDecode, "payload %q", in)
		assert.Equal(t, DefaultNotification(), n)
	}
}

func TestDefaultNotification_IsFreshCopy(t *testing.T) {
	a := DefaultNotification()
	a.Vibrate[0] = 1
	a.Actions[0].Title = "changed"

	b := DefaultNotification()
	assert.Equal(t, 200, b.Vibrate[0])
	assert.Equal(t, "View story", b.Actions[0].Title)
}

func TestResolveClick(t *testing.T) {
	n := DefaultNotification()
	n.Data.URL = "/#/stories/s1"

	url, open := ResolveClick(n, ActionOpen)
	assert.True(t, open)
	assert.Equal(t, "/#/stories/s1", url)

	url, open = ResolveClick(n, "")
	assert.True(t, open)
	assert.Equal(t, "/#/stories/s1", url)

	_, open = ResolveClick(n, ActionClose)
	assert.False(t, open)

	url, open = ResolveClick(models.Notification{}, "")
	assert.True(t, open)
	assert.Equal(t, DefaultURL, url)
}

func TestGateway_DeliverFallsBackOnBadPayload(t *testing.T) {
	g, _, logs := newGateway(t, &fakeAPI{}, "tok")

	var shown []models.Notification
	d := displayFunc(func(_ context.Context, n models.Notification) error {
		shown = append(shown, n)
		return nil
	})

	require.NoError(t, g.Deliver(context.Background(), []byte("{broken"), d))
	require.Len(t, shown, 1)
	assert.Equal(t, DefaultNotification(), shown[0])
	assert.Contains(t, logs.String(), "cannot decode push payload")
}

func TestGateway_DeliverReturnsDisplayError(t *testing.T) {
	g, _, _ := newGateway(t, &fakeAPI{}, "tok")
	boom := errors.New("display failed")

	err := g.Deliver(context.Background(), nil, displayFunc(func(context.Context, models.Notification) error { return boom }))
	require.ErrorIs(t, err, boom)
}

func TestGateway_SubscribeStoresEndpoint(t *testing.T) {
	api := &fakeAPI{}
	g, _, _ := newGateway(t, api, "tok")
	ctx := context.Background()

	require.NoError(t, g.Subscribe(ctx, validSub))
	assert.Equal(t, []models.PushSubscription{validSub}, api.subscribed)
	assert.Equal(t, []string{"tok"}, api.tokens)

	ep, err := g.Endpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, validSub.Endpoint, ep)
}

func TestGateway_SubscribeValidation(t *testing.T) {
	api := &fakeAPI{}
	g, _, _ := newGateway(t, api, "tok")

	cases := map[string]models.PushSubscription{
		"empty endpoint":    {Keys: validSub.Keys},
		"relative endpoint": {Endpoint: "/push", Keys: validSub.Keys},
		"bad scheme":        {Endpoint: "ftp://push.example.com", Keys: validSub.Keys},
		"missing auth":      {Endpoint: validSub.Endpoint, Keys: models.PushKeys{P256dh: "x"}},
		"missing p256dh":    {Endpoint: validSub.Endpoint, Keys: models.PushKeys{Auth: "x"}},
	}
	for name, sub := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, g.Subscribe(context.Background(), sub), ErrInvalidSubscription)
		})
	}
	assert.Empty(t, api.tokens)
}

func TestGateway_SubscribeRequiresCredential(t *testing.T) {
	api := &fakeAPI{}
	g, _, _ := newGateway(t, api, "")

	require.ErrorIs(t, g.Subscribe(context.Background(), validSub), client.ErrNoCredential)
	assert.Empty(t, api.tokens)
}

func TestGateway_SubscribeRemoteFailureKeepsNoEndpoint(t *testing.T) {
	api := &fakeAPI{err: client.ErrUnavailable}
	g, _, _ := newGateway(t, api, "tok")
	ctx := context.Background()

	require.ErrorIs(t, g.Subscribe(ctx, validSub), client.ErrUnavailable)

	ep, err := g.Endpoint(ctx)
	require.NoError(t, err)
	assert.Empty(t, ep)
}

func TestGateway_UnsubscribeStored(t *testing.T) {
	api := &fakeAPI{}
	g, _, _ := newGateway(t, api, "tok")
	ctx := context.Background()

	require.NoError(t, g.Subscribe(ctx, validSub))
	require.NoError(t, g.Unsubscribe(ctx, ""))
	assert.Equal(t, []string{validSub.Endpoint}, api.unsubscribed)

	ep, err := g.Endpoint(ctx)
	require.NoError(t, err)
	assert.Empty(t, ep)
}

func TestGateway_UnsubscribeOtherEndpointKeepsStored(t *testing.T) {
	api := &fakeAPI{}
	g, _, _ := newGateway(t, api, "tok")
	ctx := context.Background()

	require.NoError(t, g.Subscribe(ctx, validSub))
	require.NoError(t, g.Unsubscribe(ctx, "https://push.example.com/send/other"))

	ep, err := g.Endpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, validSub.Endpoint, ep)
}

func TestGateway_UnsubscribeWithoutSubscription(t *testing.T) {
	api := &fakeAPI{}
	g, _, _ := newGateway(t, api, "tok")

	require.ErrorIs(t, g.Unsubscribe(context.Background(), ""), ErrInvalidSubscription)
	assert.Empty(t, api.tokens)
}
