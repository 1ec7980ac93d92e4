package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"postpilot/domain/model"
	"postpilot/infrastructure/clients/platformapi"

	"github.com/google/go-querystring/query"
)

const (
	baseURL  = "https://open.tiktokapis.com"
	tokenURL = baseURL + "/v2/oauth/token/"
)

type Config struct {
	ClientKey    string
	ClientSecret string
	RedirectURI  string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, httpClient: platformapi.DefaultHTTPClient}
}

type authorizeRequest struct {
	ClientKey    string `url:"client_key"`
	ResponseType string `url:"response_type"`
	Scope        string `url:"scope"`
	RedirectURI  string `url:"redirect_uri"`
	State        string `url:"state"`
}

// AuthorizationURL builds the OAuth connect URL for the given CSRF state.
func (c *Client) AuthorizationURL(state string) string {
	params, _ := query.Values(authorizeRequest{
		ClientKey:    c.cfg.ClientKey,
		ResponseType: "code",
		Scope:        "user.info.basic,video.upload,video.publish",
		RedirectURI:  c.cfg.RedirectURI,
		State:        state,
	})
	return fmt.Sprintf("%s/platform/oauth/connect?%s", baseURL, params.Encode())
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	OpenID       string `json:"open_id"`
}

// ExchangeCode trades an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{
		"client_key":    {c.cfg.ClientKey},
		"client_secret": {c.cfg.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.cfg.RedirectURI},
	}
	var out TokenResponse
	if err := platformapi.PostForm(ctx, c.httpClient, model.PlatformTikTok, tokenURL, form, &out, parseError); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("tiktok token exchange returned no access token")
	}
	return &out, nil
}

// parseError handles both envelope shapes TikTok uses: the content API's
// {"data":{"error_code":N,"description":...}} and the v2 {"error":{...}}.
func parseError(_ int, body []byte) *platformapi.Error {
	var legacy struct {
		Data struct {
			ErrorCode   int    `json:"error_code"`
			Description string `json:"description"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &legacy); err == nil && legacy.Data.ErrorCode != 0 {
		return &platformapi.Error{Code: legacy.Data.ErrorCode, Message: legacy.Data.Description}
	}

	var v2 struct {
		Error struct {
			Code    json.Number `json:"code"`
			Message string      `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &v2); err == nil && (v2.Error.Message != "" || v2.Error.Code != "") {
		code, _ := v2.Error.Code.Int64()
		return &platformapi.Error{Code: int(code), Message: v2.Error.Message}
	}
	return nil
}
