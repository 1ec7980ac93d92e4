package persistence

import (
	"context"
	"database/sql"

	"postpilot/domain/model"
	"postpilot/domain/repository"
)

// MediaRepository resolves generated media on PostgreSQL.
type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) repository.IMedia {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) GetImageByID(ctx context.Context, id, userID int64) (*model.GeneratedMedia, error) {
	return r.get(ctx, id, userID)
}

func (r *MediaRepository) GetMediaByID(ctx context.Context, id, userID int64) (*model.GeneratedMedia, error) {
	return r.get(ctx, id, userID)
}

func (r *MediaRepository) get(ctx context.Context, id, userID int64) (*model.GeneratedMedia, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, image_url, video_url, created_at FROM generated_media WHERE id=$1 AND user_id=$2`, id, userID)
	media := &model.GeneratedMedia{}
	var imageURL, videoURL sql.NullString
	if err := row.Scan(&media.ID, &media.UserID, &imageURL, &videoURL, &media.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	media.ImageURL = imageURL.String
	media.VideoURL = videoURL.String
	return media, nil
}
