// Package replay delivers queued story submissions once the API is reachable.
//
// Replayer.Replay is one pass over the queue: submissions are sent strictly
// one after another, each success is committed (marked synced, then deleted)
// before the next one starts, and a failing submission is left in place
// without stopping the pass. Scheduler decides when passes run.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storysync/internal/auth"
	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/logging"
	"github.com/dmitrijs2005/storysync/internal/netx"
	"golang.org/x/sync/singleflight"
)

// SubmissionStore is the part of the submissions repository the replayer uses.
type SubmissionStore interface {
	List(ctx context.Context) ([]models.PendingSubmission, error)
	MarkSynced(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// StoryPoster sends a story creation request with the given credential.
type StoryPoster interface {
	AddStory(ctx context.Context, token string, story models.NewStory) error
}

// Result counts what a pass did.
type Result struct {
	Attempted int
	Delivered int
	Failed    int
	// Purged counts records confirmed by an earlier pass whose deletion
	// had not gone through.
	Purged int
}

type Replayer struct {
	store  SubmissionStore
	poster StoryPoster
	logger logging.Logger
	now    func() time.Time
	group  singleflight.Group
}

func New(store SubmissionStore, poster StoryPoster, logger logging.Logger) *Replayer {
	return &Replayer{store: store, poster: poster, logger: logger, now: time.Now}
}

// Replay runs one pass. A call made while another pass is running waits
// for that pass and shares its result. The only error returned is a failure
// to read the queue; per-submission failures are counted in Result.
func (r *Replayer) Replay(ctx context.Context) (Result, error) {
	v, err, _ := r.group.Do("replay", func() (any, error) {
		return r.replay(ctx)
	})
	res, _ := v.(Result)
	return res, err
}

func (r *Replayer) replay(ctx context.Context) (Result, error) {
	var res Result

	items, err := r.store.List(ctx)
	if err != nil {
		return res, fmt.Errorf("read pending submissions: %w", err)
	}
	if len(items) == 0 {
		return res, nil
	}

	for _, s := range items {
		if ctx.Err() != nil {
			break
		}

		if s.Synced {
			if err := r.store.Delete(ctx, s.ID); err != nil {
				r.logger.Warn(ctx, "cannot purge synced submission", "submission_id", s.ID, "error", err)
				continue
			}
			res.Purged++
			continue
		}

		res.Attempted++
		if err := r.send(ctx, s); err != nil {
			res.Failed++
			r.logger.Warn(ctx, "submission not delivered", "submission_id", s.ID, "error", err)
			continue
		}
		res.Delivered++

		// Marking first keeps a delivered record from being sent again if
		// the delete below fails.
		if err := r.store.MarkSynced(ctx, s.ID); err != nil {
			r.logger.Warn(ctx, "cannot mark submission synced", "submission_id", s.ID, "error", err)
		}
		if err := r.store.Delete(ctx, s.ID); err != nil {
			r.logger.Warn(ctx, "cannot delete delivered submission", "submission_id", s.ID, "error", err)
		}
	}

	r.logger.Info(ctx, "replay finished",
		"attempted", res.Attempted, "delivered", res.Delivered, "failed", res.Failed, "purged", res.Purged)
	return res, nil
}

func (r *Replayer) send(ctx context.Context, s models.PendingSubmission) error {
	story := models.NewStory{
		Description:    s.Description,
		Lat:            s.Lat,
		Lon:            s.Lon,
		IdempotencyKey: s.IdempotencyKey,
	}

	if s.Photo != "" {
		data, mediaType, err := netx.DecodeDataURL(s.Photo)
		if err != nil {
			return fmt.Errorf("decode photo: %w", err)
		}
		story.Photo = data
		story.PhotoContentType = mediaType
	}

	// Expired snapshots are still sent; the server decides. They are only
	// reported, never dropped.
	if exp, ok := auth.ExpiresAt(s.Token); ok && r.now().After(exp) {
		r.logger.Warn(ctx, "submission credential has expired", "submission_id", s.ID, "expired_at", exp)
	}

	return r.poster.AddStory(ctx, s.Token, story)
}
