package repository

import (
	"context"

	"postpilot/domain/model"
)

// IMedia resolves generated media artifacts for publication.
type IMedia interface {
	GetImageByID(ctx context.Context, id, userID int64) (*model.GeneratedMedia, error)
	GetMediaByID(ctx context.Context, id, userID int64) (*model.GeneratedMedia, error)
}
