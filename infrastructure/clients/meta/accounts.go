package meta

import (
	"context"
	"fmt"
	"net/url"

	"postpilot/domain/model"
	"postpilot/infrastructure/clients/platformapi"
)

// InstagramAccount is the business account linked to a managed page.
type InstagramAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Page is one Facebook page the authorizing user manages. AccessToken is the
// page token used for publishing to the page feed.
type Page struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	AccessToken string            `json:"access_token"`
	Instagram   *InstagramAccount `json:"instagram_business_account,omitempty"`
}

// Pages lists the pages managed by the user token, including any linked
// Instagram business accounts.
func (c *Client) Pages(ctx context.Context, userToken string) ([]Page, error) {
	endpoint := fmt.Sprintf(
		"%s/me/accounts?fields=id,name,access_token,instagram_business_account{id,username}&access_token=%s",
		graphBaseURL, url.QueryEscape(userToken),
	)
	var out struct {
		Data []Page `json:"data"`
	}
	if err := platformapi.Get(ctx, c.httpClient, model.PlatformFacebook, endpoint, nil, &out, parseGraphError); err != nil {
		return nil, err
	}
	return out.Data, nil
}
