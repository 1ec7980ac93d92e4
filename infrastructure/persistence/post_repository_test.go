package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"postpilot/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "image_id", "media_id", "video_url", "caption", "platforms",
		"scheduled_for", "status", "retry_count", "error_message", "published_at",
		"facebook_post_id", "instagram_post_id", "tiktok_post_id", "whatsapp_message_id",
		"created_at", "updated_at",
	})
}

func TestScheduledPostRepository_FindDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduledPostRepository(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-2 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+postColumns+` FROM scheduled_posts WHERE status=$1 AND scheduled_for<=$2 ORDER BY scheduled_for ASC`)).
		WithArgs(model.PostStatusScheduled, now).
		WillReturnRows(postRows().
			AddRow(7, 42, 11, nil, nil, "launch day", "facebook,instagram", due, "scheduled", 1, "previous failure", nil, nil, nil, nil, nil, due, due))

	posts, err := repo.FindDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, int64(7), posts[0].ID)
	require.Equal(t, []model.Platform{model.PlatformFacebook, model.PlatformInstagram}, posts[0].Platforms)
	require.Equal(t, 1, posts[0].RetryCount)
	require.NotNil(t, posts[0].ErrorMessage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_FindDue_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduledPostRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + postColumns + ` FROM scheduled_posts WHERE status=$1 AND scheduled_for<=$2 ORDER BY scheduled_for ASC`)).
		WithArgs(model.PostStatusScheduled, now).
		WillReturnRows(postRows())

	posts, err := repo.FindDue(context.Background(), now)
	require.NoError(t, err)
	require.Empty(t, posts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduledPostRepository(db)

	imageID := int64(11)
	scheduledFor := time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO scheduled_posts`)).
		WithArgs(int64(42), &imageID, nil, nil, "hello world", "instagram", scheduledFor, model.PostStatusScheduled, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))

	post, err := repo.Create(context.Background(), &model.ScheduledPost{
		UserID:       42,
		ImageID:      &imageID,
		Caption:      "hello world",
		Platforms:    []model.Platform{model.PlatformInstagram},
		ScheduledFor: scheduledFor,
	})
	require.NoError(t, err)
	require.Equal(t, int64(101), post.ID)
	require.Equal(t, model.PostStatusScheduled, post.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_MarkPublished_PartialSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduledPostRepository(db)

	publishedAt := time.Date(2026, 3, 10, 12, 1, 0, 0, time.UTC)
	errMsg := "tiktok: TikTok token is invalid or expired."
	fbID := "1234567890_111"

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts SET status=$1, published_at=$2, error_message=$3`)).
		WithArgs(model.PostStatusPublished, publishedAt, &errMsg, &fbID, nil, nil, nil, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkPublished(context.Background(), 7, publishedAt, map[model.Platform]string{model.PlatformFacebook: fbID}, &errMsg)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_Reschedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduledPostRepository(db)

	nextAt := time.Date(2026, 3, 10, 12, 5, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts SET retry_count=$1, scheduled_for=$2, error_message=$3, updated_at=$4 WHERE id=$5`)).
		WithArgs(2, nextAt, "Meta API error.", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Reschedule(context.Background(), 7, 2, nextAt, "Meta API error."))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_Cancel_NotCancellable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduledPostRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts SET status=$1, updated_at=$2 WHERE id=$3 AND user_id=$4 AND status NOT IN ($5,$6,$7)`)).
		WithArgs(model.PostStatusCancelled, sqlmock.AnyArg(), int64(7), int64(42), model.PostStatusPublished, model.PostStatusFailed, model.PostStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Cancel(context.Background(), 7, 42)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
