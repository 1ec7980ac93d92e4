package repository

import (
	"context"

	"postpilot/domain/model"
)

// IPublisher is the uniform publish capability implemented once per platform.
// Publish returns the platform post id; failures carry a typed platform error
// (HTTP status + provider code) so the resilience layer can classify them.
type IPublisher interface {
	Platform() model.Platform
	Publish(ctx context.Context, accessToken, mediaURL, caption, accountRef string) (string, error)
}

// ITokenRefresher renews a platform credential. Implementations fail fast when
// the stored credential lacks the required secret.
type ITokenRefresher interface {
	// Refresh exchanges the current secrets for a new access token. Tokens are
	// plaintext here; the caller handles decryption and encrypted persistence.
	Refresh(ctx context.Context, accessToken, refreshToken string) (*model.RefreshedToken, error)
}

// IExecutionAudit archives execution attempts durably (best-effort, optional).
type IExecutionAudit interface {
	InsertEntries(ctx context.Context, entries []*model.ExecutionLogEntry) error
	Recent(ctx context.Context, limit int) ([]*model.ExecutionLogEntry, error)
}
