package repository

import (
	"context"
	"time"

	"postpilot/domain/model"
)

// IPlatformCredential stores per-user platform authorizations. At most one
// active credential per (user, platform) is used for publishing.
type IPlatformCredential interface {
	GetByID(ctx context.Context, id int64) (*model.PlatformCredential, error)
	// GetActive returns the active credential for (user, platform), or nil when
	// the account is not connected.
	GetActive(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformCredential, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.PlatformCredential, error)
	Upsert(ctx context.Context, cred *model.PlatformCredential) error
	// UpdateTokens rotates the stored (encrypted) secrets after a refresh.
	// refreshToken nil keeps the current one.
	UpdateTokens(ctx context.Context, id int64, accessToken string, refreshToken *string, expiresAt *time.Time) error
	Deactivate(ctx context.Context, id int64) error
}
