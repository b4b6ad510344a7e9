package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/storage"
	"github.com/dmitrijs2005/storysync/internal/dbx"
)

const selectColumns = `SELECT id, name, description, photo_url, lat, lon, created_at, favorited_at FROM favorites`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) conn() (dbx.DBTX, error) {
	if r.db == nil {
		return nil, storage.ErrStorageUnavailable
	}
	return r.db, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, story models.Story) (*models.FavoriteStory, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}

	fav := &models.FavoriteStory{Story: story, FavoritedAt: r.now().UTC()}

	_, err = db.ExecContext(ctx, `
		INSERT INTO favorites (id, name, description, photo_url, lat, lon, created_at, favorited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		story.ID, story.Name, story.Description, story.PhotoURL, story.Lat, story.Lon,
		storage.FormatTime(story.CreatedAt), storage.FormatTime(fav.FavoritedAt))
	if err != nil {
		return nil, fmt.Errorf("add favorite %s: %w", story.ID, storage.Classify(err))
	}
	return fav, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove favorite %s: %w", id, storage.Classify(err))
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.FavoriteStory, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}

	var (
		f                    models.FavoriteStory
		createdAt, favorited string
	)
	err = db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).Scan(
		&f.ID, &f.Name, &f.Description, &f.PhotoURL, &f.Lat, &f.Lon, &createdAt, &favorited)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("favorite %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite %s: %w", id, storage.Classify(err))
	}
	if err := parseTimes(&f, createdAt, favorited); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	db, err := r.conn()
	if err != nil {
		return false, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check favorite %s: %w", id, storage.Classify(err))
	}
	return n > 0, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.FavoriteStory, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	items, err := dbx.QueryAll(ctx, db, scanFavorite, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", storage.Classify(err))
	}
	return items, nil
}

func (r *SQLiteRepository) Search(ctx context.Context, query string) ([]models.FavoriteStory, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(items, query), nil
}

func (r *SQLiteRepository) Sort(ctx context.Context, field models.SortField, dir models.SortDirection) ([]models.FavoriteStory, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := SortStories(items, field, dir); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		return fmt.Errorf("clear favorites: %w", storage.Classify(err))
	}
	return nil
}

func scanFavorite(rows *sql.Rows) (models.FavoriteStory, error) {
	var (
		f                    models.FavoriteStory
		createdAt, favorited string
	)
	if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.PhotoURL, &f.Lat, &f.Lon, &createdAt, &favorited); err != nil {
		return f, err
	}
	return f, parseTimes(&f, createdAt, favorited)
}

func parseTimes(f *models.FavoriteStory, createdAt, favoritedAt string) error {
	var err error
	if f.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return err
	}
	f.FavoritedAt, err = storage.ParseTime(favoritedAt)
	return err
}
