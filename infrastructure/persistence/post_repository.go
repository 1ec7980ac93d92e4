package persistence

import (
	"context"
	"database/sql"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
)

const postColumns = `id, user_id, image_id, media_id, video_url, caption, platforms, scheduled_for, status, retry_count, error_message, published_at, facebook_post_id, instagram_post_id, tiktok_post_id, whatsapp_message_id, created_at, updated_at`

// ScheduledPostRepository implements scheduled post persistence on PostgreSQL
// (native sql.DB).
type ScheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) repository.IScheduledPost {
	return &ScheduledPostRepository{db: db}
}

func (r *ScheduledPostRepository) Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error) {
	now := time.Now().UTC()
	if post.Status == "" {
		post.Status = model.PostStatusScheduled
	}
	row := r.db.QueryRowContext(ctx, `INSERT INTO scheduled_posts (user_id, image_id, media_id, video_url, caption, platforms, scheduled_for, status, retry_count, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9,$9) RETURNING id`,
		post.UserID, post.ImageID, post.MediaID, post.VideoURL, post.Caption, model.JoinPlatforms(post.Platforms), post.ScheduledFor.UTC(), post.Status, now)
	if err := row.Scan(&post.ID); err != nil {
		return nil, err
	}
	post.CreatedAt = now
	post.UpdatedAt = now
	return post, nil
}

func (r *ScheduledPostRepository) GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM scheduled_posts WHERE id=$1`, id)
	return scanPost(row)
}

func (r *ScheduledPostRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.ScheduledPost, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM scheduled_posts WHERE user_id=$1 ORDER BY scheduled_for DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// FindDue returns every post eligible for execution. A post keeps coming back
// until its status changes, which makes discovery idempotent across ticks.
func (r *ScheduledPostRepository) FindDue(ctx context.Context, now time.Time) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM scheduled_posts WHERE status=$1 AND scheduled_for<=$2 ORDER BY scheduled_for ASC`, model.PostStatusScheduled, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *ScheduledPostRepository) MarkPublished(ctx context.Context, id int64, publishedAt time.Time, postIDs map[model.Platform]string, errMsg *string) error {
	q := `UPDATE scheduled_posts SET status=$1, published_at=$2, error_message=$3,
		facebook_post_id=COALESCE($4, facebook_post_id),
		instagram_post_id=COALESCE($5, instagram_post_id),
		tiktok_post_id=COALESCE($6, tiktok_post_id),
		whatsapp_message_id=COALESCE($7, whatsapp_message_id),
		updated_at=$8 WHERE id=$9`
	_, err := r.db.ExecContext(ctx, q, model.PostStatusPublished, publishedAt.UTC(), errMsg,
		platformID(postIDs, model.PlatformFacebook),
		platformID(postIDs, model.PlatformInstagram),
		platformID(postIDs, model.PlatformTikTok),
		platformID(postIDs, model.PlatformWhatsApp),
		time.Now().UTC(), id)
	return err
}

func (r *ScheduledPostRepository) Reschedule(ctx context.Context, id int64, retryCount int, nextAt time.Time, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE scheduled_posts SET retry_count=$1, scheduled_for=$2, error_message=$3, updated_at=$4 WHERE id=$5`,
		retryCount, nextAt.UTC(), errMsg, time.Now().UTC(), id)
	return err
}

func (r *ScheduledPostRepository) MarkFailed(ctx context.Context, id int64, retryCount int, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE scheduled_posts SET status=$1, retry_count=$2, error_message=$3, updated_at=$4 WHERE id=$5`,
		model.PostStatusFailed, retryCount, errMsg, time.Now().UTC(), id)
	return err
}

func (r *ScheduledPostRepository) Cancel(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE scheduled_posts SET status=$1, updated_at=$2 WHERE id=$3 AND user_id=$4 AND status NOT IN ($5,$6,$7)`,
		model.PostStatusCancelled, time.Now().UTC(), id, userID,
		model.PostStatusPublished, model.PostStatusFailed, model.PostStatusCancelled)
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

func platformID(postIDs map[model.Platform]string, p model.Platform) *string {
	if id, ok := postIDs[p]; ok && id != "" {
		return &id
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.ScheduledPost, error) {
	post := &model.ScheduledPost{}
	var (
		imageID, mediaID                 sql.NullInt64
		videoURL, errMsg                 sql.NullString
		fbID, igID, ttID, waID           sql.NullString
		publishedAt                      sql.NullTime
		platforms                        string
	)
	if err := row.Scan(&post.ID, &post.UserID, &imageID, &mediaID, &videoURL, &post.Caption, &platforms, &post.ScheduledFor, &post.Status, &post.RetryCount, &errMsg, &publishedAt, &fbID, &igID, &ttID, &waID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}
	post.Platforms = model.SplitPlatforms(platforms)
	if imageID.Valid {
		post.ImageID = &imageID.Int64
	}
	if mediaID.Valid {
		post.MediaID = &mediaID.Int64
	}
	if videoURL.Valid {
		post.VideoURL = &videoURL.String
	}
	if errMsg.Valid {
		post.ErrorMessage = &errMsg.String
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	if fbID.Valid {
		post.FacebookPostID = &fbID.String
	}
	if igID.Valid {
		post.InstagramPostID = &igID.String
	}
	if ttID.Valid {
		post.TikTokPostID = &ttID.String
	}
	if waID.Valid {
		post.WhatsAppMessageID = &waID.String
	}
	return post, nil
}

func collectPosts(rows *sql.Rows) ([]*model.ScheduledPost, error) {
	var list []*model.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, post)
	}
	return list, rows.Err()
}
