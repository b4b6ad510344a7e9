package stories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/storysync/internal/common"
	"github.com/dmitrijs2005/storysync/internal/dbx"
	"github.com/dmitrijs2005/storysync/internal/server/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Story) (*models.Story, error) {
	query :=
		`INSERT INTO stories (id, user_id, description, photo_key, lat, lon, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	var key sql.NullString
	if s.IdempotencyKey != "" {
		key = sql.NullString{String: s.IdempotencyKey, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.UserID, s.Description, s.PhotoKey, nullFloat(s.Lat), nullFloat(s.Lon), key).Scan(&s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

const selectStory = `SELECT s.id, s.user_id, u.name, s.description, s.photo_key, s.lat, s.lon, COALESCE(s.idempotency_key, ''), s.created_at
		 FROM stories s JOIN users u ON u.id = s.user_id`

func (r *PostgresRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Story, error) {
	rows, err := dbx.QueryAll(ctx, r.db, scanStory, selectStory+`
		 WHERE s.user_id = $1 AND s.idempotency_key = $2`, userID, key)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	return rows[0], nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*models.Story, error) {
	rows, err := dbx.QueryAll(ctx, r.db, scanStory, selectStory+`
		 ORDER BY s.created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rows, nil
}

func scanStory(rows *sql.Rows) (*models.Story, error) {
	var (
		s        models.Story
		lat, lon sql.NullFloat64
	)
	if err := rows.Scan(&s.ID, &s.UserID, &s.AuthorName, &s.Description, &s.PhotoKey, &lat, &lon, &s.IdempotencyKey, &s.CreatedAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		s.Lat = &lat.Float64
	}
	if lon.Valid {
		s.Lon = &lon.Float64
	}
	return &s, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
