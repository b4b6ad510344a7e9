package submissions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/storage"
	"github.com/dmitrijs2005/storysync/internal/dbx"
	"github.com/google/uuid"
)

const selectColumns = `SELECT id, description, lat, lon, photo, token, idempotency_key, created_at, synced, synced_at FROM pending_submissions`

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

func (r *SQLiteRepository) Add(ctx context.Context, s models.NewSubmission) (int64, error) {
	db, err := r.conn()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO pending_submissions (description, lat, lon, photo, token, idempotency_key, created_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		s.Description, s.Lat, s.Lon, s.Photo, s.Token, uuid.NewString(), storage.FormatTime(r.now()))
	if err != nil {
		return 0, fmt.Errorf("add submission: %w", storage.Classify(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add submission: %w", storage.Classify(err))
	}
	return id, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.PendingSubmission, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}

	items, err := dbx.QueryAll(ctx, db, scanSubmission, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get submission %d: %w", id, storage.Classify(err))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("submission %d: %w", id, storage.ErrNotFound)
	}
	return &items[0], nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.PendingSubmission, error) {
	return r.list(ctx, selectColumns+` ORDER BY id`)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.PendingSubmission, error) {
	return r.list(ctx, selectColumns+` WHERE synced = 0 ORDER BY id`)
}

func (r *SQLiteRepository) list(ctx context.Context, query string) ([]models.PendingSubmission, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	items, err := dbx.QueryAll(ctx, db, scanSubmission, query)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", storage.Classify(err))
	}
	return items, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	db, err := r.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", storage.Classify(err))
	}
	return n, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`UPDATE pending_submissions SET synced = 1, synced_at = ? WHERE id = ? AND synced = 0`,
		storage.FormatTime(r.now()), id)
	if err != nil {
		return fmt.Errorf("mark submission %d synced: %w", id, storage.Classify(err))
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM pending_submissions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete submission %d: %w", id, storage.Classify(err))
	}
	return nil
}

func scanSubmission(rows *sql.Rows) (models.PendingSubmission, error) {
	var (
		s         models.PendingSubmission
		createdAt string
		syncedAt  sql.NullString
	)
	err := rows.Scan(&s.ID, &s.Description, &s.Lat, &s.Lon, &s.Photo, &s.Token,
		&s.IdempotencyKey, &createdAt, &s.Synced, &syncedAt)
	if err != nil {
		return s, err
	}
	if s.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return s, err
	}
	if s.SyncedAt, err = storage.ParseNullTime(syncedAt); err != nil {
		return s, err
	}
	return s, nil
}

var _ Repository = (*SQLiteRepository)(nil)
