package meta

import (
	"context"
	"fmt"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/clients/platformapi"
	"postpilot/infrastructure/logger"
)

// InstagramPublisher runs the two-step container publish: create a media
// container from the image URL, then publish it.
type InstagramPublisher struct {
	client *Client
}

func (c *Client) Instagram() repository.IPublisher {
	return &InstagramPublisher{client: c}
}

func (p *InstagramPublisher) Platform() model.Platform { return model.PlatformInstagram }

func (p *InstagramPublisher) Publish(ctx context.Context, accessToken, mediaURL, caption, accountRef string) (string, error) {
	container := map[string]any{
		"image_url":    mediaURL,
		"caption":      caption,
		"media_type":   "IMAGE",
		"access_token": accessToken,
	}
	var created struct {
		ID string `json:"id"`
	}
	createEndpoint := fmt.Sprintf("%s/me/media", igGraphBaseURL)
	if err := platformapi.PostJSON(ctx, p.client.httpClient, model.PlatformInstagram, createEndpoint, nil, container, &created, parseGraphError); err != nil {
		return "", err
	}

	publish := map[string]any{
		"creation_id":  created.ID,
		"access_token": accessToken,
	}
	var published struct {
		ID string `json:"id"`
	}
	publishEndpoint := fmt.Sprintf("%s/me/media_publish", igGraphBaseURL)
	if err := platformapi.PostJSON(ctx, p.client.httpClient, model.PlatformInstagram, publishEndpoint, nil, publish, &published, parseGraphError); err != nil {
		return "", err
	}

	logger.GetLogger().WithField("mediaId", published.ID).Info("Published to Instagram")
	return published.ID, nil
}
