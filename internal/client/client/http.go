package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/common"
)

// HTTPClient implements Client over the REST API rooted at baseURL
// (for example https://story-api.dicoding.dev/v1).
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient uses httpClient for every request; pass one whose transport
// is a cache.Transport to get offline reads.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type loginResponse struct {
	envelope
	LoginResult models.LoginResult `json:"loginResult"`
}

type storiesResponse struct {
	envelope
	ListStory []models.Story `json:"listStory"`
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/register", "", body, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", body, &resp); err != nil {
		return nil, err
	}
	if resp.LoginResult.Token == "" {
		return nil, fmt.Errorf("login: empty token in response")
	}
	return &resp.LoginResult, nil
}

func (c *HTTPClient) GetStories(ctx context.Context, token string) ([]models.Story, error) {
	if token == "" {
		return nil, ErrNoCredential
	}
	var resp storiesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/stories", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ListStory, nil
}

func (c *HTTPClient) AddStory(ctx context.Context, token string, story models.NewStory) error {
	if token == "" {
		return ErrNoCredential
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"description", story.Description},
	}
	// A skipped location is left out so the server stores no coordinates.
	if story.Lat != nil && story.Lon != nil {
		fields = append(fields,
			struct{ name, value string }{"lat", strconv.FormatFloat(*story.Lat, 'f', -1, 64)},
			struct{ name, value string }{"lon", strconv.FormatFloat(*story.Lon, 'f', -1, 64)},
		)
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}

	if len(story.Photo) > 0 {
		ct := story.PhotoContentType
		if ct == "" {
			ct = http.DetectContentType(story.Photo)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, common.PhotoFormField, common.PhotoFileName))
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := part.Write(story.Photo); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stories", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	if story.IdempotencyKey != "" {
		req.Header.Set(common.IdempotencyKeyHeader, story.IdempotencyKey)
	}

	return c.do(req, nil)
}

func (c *HTTPClient) Subscribe(ctx context.Context, token string, sub models.PushSubscription) error {
	if token == "" {
		return ErrNoCredential
	}
	return c.doJSON(ctx, http.MethodPost, "/notifications/subscribe", token, sub, nil)
}

func (c *HTTPClient) Unsubscribe(ctx context.Context, token string, endpoint string) error {
	if token == "" {
		return ErrNoCredential
	}
	body := map[string]string{"endpoint": endpoint}
	return c.doJSON(ctx, http.MethodDelete, "/notifications/subscribe", token, body, nil)
}

// Ping sends a HEAD request to the API root. Any HTTP answer counts as
// reachable. HEAD is never served from the response cache.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}
	return c.do(req, out)
}

// do sends req and decodes a successful JSON answer into out (when non-nil).
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode, data)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Error {
		return &RemoteError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// maxMessageRunes bounds how much of an unexpected response body ends up in
// an error message.
const maxMessageRunes = 200

func mapStatus(code int, body []byte) error {
	var env envelope
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		msg = env.Message
	}
	if r := []rune(msg); len(r) > maxMessageRunes {
		msg = string(r[:maxMessageRunes])
	}

	return &RemoteError{StatusCode: code, Message: msg}
}

// IsNetworkFailure reports whether err means the request never reached the
// server, as opposed to being answered with an error.
func IsNetworkFailure(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
