package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storysync/internal/common"
	"github.com/dmitrijs2005/storysync/internal/logging"
	"github.com/dmitrijs2005/storysync/internal/server/models"
	"github.com/dmitrijs2005/storysync/internal/server/photos"
	"github.com/dmitrijs2005/storysync/internal/server/repositories/repomanager"
)

// DefaultListLimit caps GET /stories.
const DefaultListLimit = 50

// PhotoStore keeps photo bytes outside the database.
type PhotoStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// NewStory is an incoming story submission.
type NewStory struct {
	Description      string
	Photo            []byte
	PhotoContentType string
	Lat              *float64
	Lon              *float64
	IdempotencyKey   string
}

// StoryView is a story ready to be listed, with a temporary photo link.
type StoryView struct {
	*models.Story
	PhotoURL string
}

type StoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	photos      PhotoStore
	logger      logging.Logger
	newKey      func(time.Time) string
}

func NewStoryService(db *sql.DB, m repomanager.RepositoryManager, p PhotoStore, logger logging.Logger) *StoryService {
	return &StoryService{
		db:          db,
		repomanager: m,
		photos:      p,
		logger:      logger,
		newKey:      photos.NewKey,
	}
}

// Create stores the photo and the story. When the user already submitted a
// story under the same idempotency key the existing story is returned and
// created is false.
func (s *StoryService) Create(ctx context.Context, userID string, in NewStory) (story *models.Story, created bool, err error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, false, fmt.Errorf("%w: description is required", common.ErrorValidation)
	}
	if len(in.Photo) == 0 {
		return nil, false, fmt.Errorf("%w: photo is required", common.ErrorValidation)
	}
	if len(in.Photo) > common.MaxPhotoSize {
		return nil, false, fmt.Errorf("%w: photo exceeds %d bytes", common.ErrorValidation, common.MaxPhotoSize)
	}

	repo := s.repomanager.Stories(s.db)

	if in.IdempotencyKey != "" {
		existing, err := repo.FindByIdempotencyKey(ctx, userID, in.IdempotencyKey)
		switch {
		case err == nil:
			s.logger.Info(ctx, "duplicate story submission", "story_id", existing.ID, "idempotency_key", in.IdempotencyKey)
			return existing, false, nil
		case !errors.Is(err, common.ErrorNotFound):
			return nil, false, fmt.Errorf("error looking up story: %w", err)
		}
	}

	key := s.newKey(time.Now())
	if err := s.photos.Put(ctx, key, in.Photo, in.PhotoContentType); err != nil {
		return nil, false, fmt.Errorf("error storing photo: %w", err)
	}

	story = &models.Story{
		ID:             uuid.NewString(),
		UserID:         userID,
		Description:    in.Description,
		PhotoKey:       key,
		Lat:            in.Lat,
		Lon:            in.Lon,
		IdempotencyKey: in.IdempotencyKey,
	}

	saved, err := repo.Create(ctx, story)
	if err != nil {
		// Lost a race against a concurrent replay of the same submission.
		if errors.Is(err, common.ErrorAlreadyExists) && in.IdempotencyKey != "" {
			existing, findErr := repo.FindByIdempotencyKey(ctx, userID, in.IdempotencyKey)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("error creating story: %w", err)
	}

	s.logger.Info(ctx, "story created", "story_id", saved.ID, "user_id", userID)
	return saved, true, nil
}

// List returns the newest stories with presigned photo URLs. A story whose
// photo cannot be signed is listed without one.
func (s *StoryService) List(ctx context.Context, limit int) ([]StoryView, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	stories, err := s.repomanager.Stories(s.db).List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing stories: %w", err)
	}

	out := make([]StoryView, 0, len(stories))
	for _, st := range stories {
		url, err := s.photos.PresignGet(ctx, st.PhotoKey)
		if err != nil {
			s.logger.Warn(ctx, "cannot presign photo", "story_id", st.ID, "error", err)
		}
		out = append(out, StoryView{Story: st, PhotoURL: url})
	}
	return out, nil
}
