package meta

import (
	"context"
	"fmt"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/clients/platformapi"

	"github.com/google/go-querystring/query"
)

type exchangeRequest struct {
	GrantType       string `url:"grant_type"`
	ClientID        string `url:"client_id"`
	ClientSecret    string `url:"client_secret"`
	FBExchangeToken string `url:"fb_exchange_token"`
}

// TokenRefresher exchanges the current long-lived token for a fresh one
// (fb_exchange_token grant). Meta does not rotate refresh tokens.
type TokenRefresher struct {
	client *Client
}

func (c *Client) Refresher() repository.ITokenRefresher {
	return &TokenRefresher{client: c}
}

func (r *TokenRefresher) Refresh(ctx context.Context, accessToken, _ string) (*model.RefreshedToken, error) {
	params, err := query.Values(exchangeRequest{
		GrantType:       "fb_exchange_token",
		ClientID:        r.client.cfg.AppID,
		ClientSecret:    r.client.cfg.AppSecret,
		FBExchangeToken: accessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("encode exchange params: %w", err)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	endpoint := fmt.Sprintf("%s/oauth/access_token?%s", graphBaseURL, params.Encode())
	if err := platformapi.Get(ctx, r.client.httpClient, model.PlatformFacebook, endpoint, nil, &out, parseGraphError); err != nil {
		return nil, err
	}

	ttl := out.ExpiresIn
	if ttl <= 0 {
		ttl = defaultTokenTTLSeconds
	}
	return &model.RefreshedToken{
		AccessToken: out.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(ttl) * time.Second),
	}, nil
}
