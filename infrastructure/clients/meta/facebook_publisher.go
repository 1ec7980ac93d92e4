package meta

import (
	"context"
	"fmt"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/clients/platformapi"
	"postpilot/infrastructure/logger"
)

// FacebookPublisher posts to a page feed. accountRef is the page id stored on
// the credential.
type FacebookPublisher struct {
	client *Client
}

func (c *Client) Facebook() repository.IPublisher {
	return &FacebookPublisher{client: c}
}

func (p *FacebookPublisher) Platform() model.Platform { return model.PlatformFacebook }

func (p *FacebookPublisher) Publish(ctx context.Context, accessToken, mediaURL, caption, accountRef string) (string, error) {
	payload := map[string]any{
		"message":      caption,
		"access_token": accessToken,
	}
	if mediaURL != "" {
		payload["picture"] = mediaURL
	}

	endpoint := fmt.Sprintf("%s/%s/feed", graphBaseURL, accountRef)
	var out struct {
		ID string `json:"id"`
	}
	if err := platformapi.PostJSON(ctx, p.client.httpClient, model.PlatformFacebook, endpoint, nil, payload, &out, parseGraphError); err != nil {
		return "", err
	}

	logger.GetLogger().WithField("postId", out.ID).Info("Published to Facebook page feed")
	return out.ID, nil
}
