package meta

import (
	"encoding/json"
	"net/http"

	"postpilot/infrastructure/clients/platformapi"

	"golang.org/x/oauth2"
)

const (
	graphBaseURL   = "https://graph.facebook.com/v18.0"
	igGraphBaseURL = "https://graph.instagram.com/v18.0"

	authURL  = "https://www.facebook.com/v18.0/dialog/oauth"
	tokenURL = "https://graph.facebook.com/v18.0/oauth/access_token"

	// Long-lived tokens default to 60 days when Graph omits expires_in.
	defaultTokenTTLSeconds = 5184000
)

type Config struct {
	AppID       string
	AppSecret   string
	RedirectURI string
}

// Client groups the Graph API integrations for Facebook and Instagram. One
// client serves both; the two publishers only differ in endpoint shape.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, httpClient: platformapi.DefaultHTTPClient}
}

// OAuthConfig builds the authorization-code flow config for the connect
// endpoints.
func (c *Client) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.cfg.AppID,
		ClientSecret: c.cfg.AppSecret,
		RedirectURL:  c.cfg.RedirectURI,
		Scopes: []string{
			"instagram_basic",
			"instagram_content_publish",
			"pages_read_engagement",
			"pages_manage_posts",
		},
		Endpoint: oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
	}
}

type graphErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
		Subcode int    `json:"error_subcode"`
	} `json:"error"`
}

// parseGraphError reads the standard Graph error envelope. Platform and
// status are filled in by the caller.
func parseGraphError(_ int, body []byte) *platformapi.Error {
	var parsed graphErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}
	if parsed.Error.Message == "" && parsed.Error.Code == 0 {
		return nil
	}
	return &platformapi.Error{
		Code:    parsed.Error.Code,
		Subcode: parsed.Error.Subcode,
		Message: parsed.Error.Message,
	}
}
