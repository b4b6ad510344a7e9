package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/favorites"
)

type FavoriteService interface {
	// Toggle saves story as a favorite or removes it when already saved.
	// It reports whether the story is a favorite afterwards.
	Toggle(ctx context.Context, story models.Story) (bool, error)
	Add(ctx context.Context, story models.Story) (*models.FavoriteStory, error)
	Remove(ctx context.Context, id string) error
	IsFavorite(ctx context.Context, id string) (bool, error)
	// Query searches when query is non-empty and sorts the result.
	Query(ctx context.Context, query string, field models.SortField, dir models.SortDirection) ([]models.FavoriteStory, error)
	Clear(ctx context.Context) error
}

type favoriteService struct {
	repo favorites.Repository
}

func NewFavoriteService(repo favorites.Repository) FavoriteService {
	return &favoriteService{repo: repo}
}

func (s *favoriteService) Toggle(ctx context.Context, story models.Story) (bool, error) {
	ok, err := s.repo.Exists(ctx, story.ID)
	if err != nil {
		return false, err
	}
	if ok {
		return false, s.repo.Remove(ctx, story.ID)
	}
	if _, err := s.repo.Add(ctx, story); err != nil {
		return false, err
	}
	return true, nil
}

func (s *favoriteService) Add(ctx context.Context, story models.Story) (*models.FavoriteStory, error) {
	return s.repo.Add(ctx, story)
}

func (s *favoriteService) Remove(ctx context.Context, id string) error {
	return s.repo.Remove(ctx, id)
}

func (s *favoriteService) IsFavorite(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *favoriteService) Query(ctx context.Context, query string, field models.SortField, dir models.SortDirection) ([]models.FavoriteStory, error) {
	if strings.TrimSpace(query) == "" {
		return s.repo.Sort(ctx, field, dir)
	}

	items, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := favorites.SortStories(items, field, dir); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *favoriteService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
