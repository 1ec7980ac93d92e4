package tiktok

import (
	"context"
	"errors"
	"net/url"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/clients/platformapi"
)

// TokenRefresher runs the refresh_token grant. TikTok rotates the refresh
// token on every refresh, so the returned value must be persisted.
type TokenRefresher struct {
	client *Client
}

func (c *Client) Refresher() repository.ITokenRefresher {
	return &TokenRefresher{client: c}
}

func (r *TokenRefresher) Refresh(ctx context.Context, _, refreshToken string) (*model.RefreshedToken, error) {
	if refreshToken == "" {
		return nil, errors.New("tiktok credential has no refresh token")
	}

	form := url.Values{
		"client_key":    {r.client.cfg.ClientKey},
		"client_secret": {r.client.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	var out TokenResponse
	if err := platformapi.PostForm(ctx, r.client.httpClient, model.PlatformTikTok, tokenURL, form, &out, parseError); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, errors.New("tiktok refresh returned no access token")
	}

	return &model.RefreshedToken{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
	}, nil
}
