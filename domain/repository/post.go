package repository

import (
	"context"
	"time"

	"postpilot/domain/model"
)

// IScheduledPost is the store contract for scheduled posts. A post is due when
// status = scheduled and scheduled_for <= now; FindDue must keep returning it
// until its status changes (at-least-once discovery).
type IScheduledPost interface {
	Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error)
	GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*model.ScheduledPost, error)
	FindDue(ctx context.Context, now time.Time) ([]*model.ScheduledPost, error)
	// MarkPublished sets status=published, records publishedAt and the platform
	// post ids collected so far. errMsg is non-nil for partial success.
	MarkPublished(ctx context.Context, id int64, publishedAt time.Time, postIDs map[model.Platform]string, errMsg *string) error
	// Reschedule keeps status=scheduled with a bumped retry count and a new due
	// time (outer retry layer).
	Reschedule(ctx context.Context, id int64, retryCount int, nextAt time.Time, errMsg string) error
	MarkFailed(ctx context.Context, id int64, retryCount int, errMsg string) error
	Cancel(ctx context.Context, id, userID int64) error
}
