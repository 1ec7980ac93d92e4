package usecase

import (
	"context"
	"fmt"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"
	"postpilot/infrastructure/security"
)

// TokenManager refreshes platform credentials and persists the rotated
// secrets encrypted. Platforms without a registered refresher (WhatsApp uses
// permanent tokens) fail fast.
type TokenManager struct {
	creds      repository.IPlatformCredential
	cipher     *security.Cipher
	refreshers map[model.Platform]repository.ITokenRefresher
}

func NewTokenManager(creds repository.IPlatformCredential, cipher *security.Cipher, refreshers map[model.Platform]repository.ITokenRefresher) *TokenManager {
	return &TokenManager{creds: creds, cipher: cipher, refreshers: refreshers}
}

// RefreshCredential exchanges the stored secrets for fresh ones and returns
// the new plaintext access token.
func (m *TokenManager) RefreshCredential(ctx context.Context, cred *model.PlatformCredential) (string, error) {
	refresher, ok := m.refreshers[cred.Platform]
	if !ok {
		return "", fmt.Errorf("token refresh not supported for %s", cred.Platform)
	}

	accessToken, err := m.cipher.Decrypt(cred.AccessToken)
	if err != nil {
		return "", fmt.Errorf("decrypt access token: %w", err)
	}
	var refreshToken string
	if cred.RefreshToken != nil {
		refreshToken, err = m.cipher.Decrypt(*cred.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("decrypt refresh token: %w", err)
		}
	}

	refreshed, err := refresher.Refresh(ctx, accessToken, refreshToken)
	if err != nil {
		logger.GetLogger().
			WithField("credentialId", cred.ID).
			WithField("platform", cred.Platform).
			WithField("error", err).
			Error("Token refresh failed")
		return "", err
	}

	encAccess, err := m.cipher.Encrypt(refreshed.AccessToken)
	if err != nil {
		return "", fmt.Errorf("encrypt access token: %w", err)
	}
	var encRefresh *string
	if refreshed.RefreshToken != "" {
		enc, err := m.cipher.Encrypt(refreshed.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("encrypt refresh token: %w", err)
		}
		encRefresh = &enc
	}
	var expiresAt *time.Time
	if !refreshed.ExpiresAt.IsZero() {
		expiresAt = &refreshed.ExpiresAt
	}

	if err := m.creds.UpdateTokens(ctx, cred.ID, encAccess, encRefresh, expiresAt); err != nil {
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}

	logger.GetLogger().
		WithField("credentialId", cred.ID).
		WithField("platform", cred.Platform).
		Info("Credential refreshed")
	return refreshed.AccessToken, nil
}
