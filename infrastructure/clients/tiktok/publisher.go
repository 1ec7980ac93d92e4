package tiktok

import (
	"context"
	"fmt"
	"net/http"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/clients/platformapi"
	"postpilot/infrastructure/logger"
)

// TikTok caps the post title length.
const maxTitleLen = 150

// Publisher initiates a PULL_FROM_URL video publish. TikTok fetches the video
// itself, so the call returns as soon as the publish task is accepted.
type Publisher struct {
	client *Client
}

func (c *Client) Publisher() repository.IPublisher {
	return &Publisher{client: c}
}

func (p *Publisher) Platform() model.Platform { return model.PlatformTikTok }

func (p *Publisher) Publish(ctx context.Context, accessToken, mediaURL, caption, _ string) (string, error) {
	title := caption
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	payload := map[string]any{
		"post_info": map[string]any{
			"title":           title,
			"privacy_level":   "PUBLIC_TO_EVERYONE",
			"disable_comment": false,
			"disable_duet":    false,
			"disable_stitch":  false,
		},
		"source_info": map[string]any{
			"source":    "PULL_FROM_URL",
			"video_url": mediaURL,
		},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)

	var out struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/v2/post/publish/video/init/", baseURL)
	if err := platformapi.PostJSON(ctx, p.client.httpClient, model.PlatformTikTok, endpoint, header, payload, &out, parseError); err != nil {
		return "", err
	}

	logger.GetLogger().WithField("publishId", out.Data.PublishID).Info("TikTok video publish accepted")
	return out.Data.PublishID, nil
}
