package persistence

import (
	"context"
	"database/sql"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
)

// ScheduledPostRepositoryMSSQL is the SQL Server variant of the scheduled
// post store (@pN placeholders, OUTPUT instead of RETURNING).
type ScheduledPostRepositoryMSSQL struct {
	db *sql.DB
}

func NewScheduledPostRepositoryMSSQL(db *sql.DB) repository.IScheduledPost {
	return &ScheduledPostRepositoryMSSQL{db: db}
}

func (r *ScheduledPostRepositoryMSSQL) Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error) {
	now := time.Now().UTC()
	if post.Status == "" {
		post.Status = model.PostStatusScheduled
	}
	row := r.db.QueryRowContext(ctx, `INSERT INTO dbo.[scheduled_posts] (user_id, image_id, media_id, video_url, caption, platforms, scheduled_for, status, retry_count, created_at, updated_at)
		OUTPUT INSERTED.id
		VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,0,@p9,@p9)`,
		post.UserID, post.ImageID, post.MediaID, post.VideoURL, post.Caption, model.JoinPlatforms(post.Platforms), post.ScheduledFor.UTC(), string(post.Status), now)
	if err := row.Scan(&post.ID); err != nil {
		return nil, err
	}
	post.CreatedAt = now
	post.UpdatedAt = now
	return post, nil
}

func (r *ScheduledPostRepositoryMSSQL) GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM dbo.[scheduled_posts] WHERE id=@p1`, id)
	return scanPost(row)
}

func (r *ScheduledPostRepositoryMSSQL) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.ScheduledPost, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p2) `+postColumns+` FROM dbo.[scheduled_posts] WHERE user_id=@p1 ORDER BY scheduled_for DESC`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *ScheduledPostRepositoryMSSQL) FindDue(ctx context.Context, now time.Time) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM dbo.[scheduled_posts] WHERE status=@p1 AND scheduled_for<=@p2 ORDER BY scheduled_for ASC`, string(model.PostStatusScheduled), now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *ScheduledPostRepositoryMSSQL) MarkPublished(ctx context.Context, id int64, publishedAt time.Time, postIDs map[model.Platform]string, errMsg *string) error {
	q := `UPDATE dbo.[scheduled_posts] SET status=@p1, published_at=@p2, error_message=@p3,
		facebook_post_id=COALESCE(@p4, facebook_post_id),
		instagram_post_id=COALESCE(@p5, instagram_post_id),
		tiktok_post_id=COALESCE(@p6, tiktok_post_id),
		whatsapp_message_id=COALESCE(@p7, whatsapp_message_id),
		updated_at=@p8 WHERE id=@p9`
	_, err := r.db.ExecContext(ctx, q, string(model.PostStatusPublished), publishedAt.UTC(), errMsg,
		platformID(postIDs, model.PlatformFacebook),
		platformID(postIDs, model.PlatformInstagram),
		platformID(postIDs, model.PlatformTikTok),
		platformID(postIDs, model.PlatformWhatsApp),
		time.Now().UTC(), id)
	return err
}

func (r *ScheduledPostRepositoryMSSQL) Reschedule(ctx context.Context, id int64, retryCount int, nextAt time.Time, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[scheduled_posts] SET retry_count=@p1, scheduled_for=@p2, error_message=@p3, updated_at=@p4 WHERE id=@p5`,
		retryCount, nextAt.UTC(), errMsg, time.Now().UTC(), id)
	return err
}

func (r *ScheduledPostRepositoryMSSQL) MarkFailed(ctx context.Context, id int64, retryCount int, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[scheduled_posts] SET status=@p1, retry_count=@p2, error_message=@p3, updated_at=@p4 WHERE id=@p5`,
		string(model.PostStatusFailed), retryCount, errMsg, time.Now().UTC(), id)
	return err
}

func (r *ScheduledPostRepositoryMSSQL) Cancel(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE dbo.[scheduled_posts] SET status=@p1, updated_at=@p2 WHERE id=@p3 AND user_id=@p4 AND status NOT IN (@p5,@p6,@p7)`,
		string(model.PostStatusCancelled), time.Now().UTC(), id, userID,
		string(model.PostStatusPublished), string(model.PostStatusFailed), string(model.PostStatusCancelled))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
