package model

import "time"

// PlatformCredential stores one user's authorization for one platform.
// AccessToken and RefreshToken are encrypted at rest; they are decrypted in
// memory only for the duration of an outbound call.
type PlatformCredential struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Platform     Platform   `json:"platform"`
	AccountName  string     `json:"account_name"`
	AccountID    string     `json:"account_id"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RefreshedToken is the outcome of a provider token refresh. RefreshToken is
// empty for providers that do not rotate it (Meta long-lived tokens).
type RefreshedToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
