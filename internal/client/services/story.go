package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/storysync/internal/client/client"
	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/submissions"
	"github.com/dmitrijs2005/storysync/internal/logging"
	"github.com/dmitrijs2005/storysync/internal/netx"
)

// ReplayRequester asks for a replay of the pending queue once the
// connection allows it.
type ReplayRequester interface {
	Request()
}

// AddOutcome reports what happened to a new story.
type AddOutcome struct {
	// Queued is true when the story was saved for later delivery.
	Queued bool
	// SubmissionID is the pending-queue id when Queued.
	SubmissionID int64
}

type StoryService interface {
	List(ctx context.Context) ([]models.Story, error)
	Add(ctx context.Context, story models.NewStory) (AddOutcome, error)
	Pending(ctx context.Context) ([]models.PendingSubmission, error)
	PendingCount(ctx context.Context) (int, error)
}

type storyService struct {
	client  client.Client
	creds   CredentialProvider
	queue   submissions.Repository
	replays ReplayRequester
	logger  logging.Logger
}

// CredentialProvider returns the current bearer credential.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

func NewStoryService(c client.Client, creds CredentialProvider, queue submissions.Repository, replays ReplayRequester, logger logging.Logger) StoryService {
	return &storyService{client: c, creds: creds, queue: queue, replays: replays, logger: logger}
}

func (s *storyService) token(ctx context.Context) (string, error) {
	token, err := s.creds.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", client.ErrNoCredential
	}
	return token, nil
}

// List fetches the story list. Offline, the request cache answers with the
// last successful list.
func (s *storyService) List(ctx context.Context) ([]models.Story, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetStories(ctx, token)
}

// Add posts the story. When the server cannot be reached the story is queued
// with the current credential and a replay is requested; any other failure
// is returned as is.
func (s *storyService) Add(ctx context.Context, story models.NewStory) (AddOutcome, error) {
	token, err := s.token(ctx)
	if err != nil {
		return AddOutcome{}, err
	}

	err = s.client.AddStory(ctx, token, story)
	if err == nil {
		return AddOutcome{}, nil
	}
	if !errors.Is(err, client.ErrUnavailable) {
		return AddOutcome{}, err
	}

	contentType := story.PhotoContentType
	if contentType == "" {
		contentType = http.DetectContentType(story.Photo)
	}

	id, qerr := s.queue.Add(ctx, models.NewSubmission{
		Description: story.Description,
		Lat:         story.Lat,
		Lon:         story.Lon,
		Photo:       netx.EncodeDataURL(contentType, story.Photo),
		Token:       token,
	})
	if qerr != nil {
		return AddOutcome{}, fmt.Errorf("queue story: %w", errors.Join(qerr, err))
	}

	s.logger.Info(ctx, "story queued for later delivery", "submission_id", id)
	s.replays.Request()

	return AddOutcome{Queued: true, SubmissionID: id}, nil
}

func (s *storyService) Pending(ctx context.Context) ([]models.PendingSubmission, error) {
	return s.queue.List(ctx)
}

func (s *storyService) PendingCount(ctx context.Context) (int, error) {
	return s.queue.Count(ctx)
}
