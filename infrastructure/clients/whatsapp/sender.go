package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/clients/platformapi"
	"postpilot/infrastructure/logger"
)

const graphBaseURL = "https://graph.facebook.com/v18.0"

// Config holds the Business Cloud API settings. WhatsApp uses a permanent
// system-user token, so there is no refresher for this platform.
type Config struct {
	// Recipient receives the published content (broadcast target).
	Recipient string
}

// Sender delivers the post content as a WhatsApp message. accountRef is the
// phone number id stored on the credential.
type Sender struct {
	cfg        Config
	httpClient *http.Client
}

func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg, httpClient: platformapi.DefaultHTTPClient}
}

var _ repository.IPublisher = (*Sender)(nil)

func (s *Sender) Platform() model.Platform { return model.PlatformWhatsApp }

func (s *Sender) Publish(ctx context.Context, accessToken, mediaURL, caption, accountRef string) (string, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                s.cfg.Recipient,
	}
	if mediaURL != "" {
		image := map[string]any{"link": mediaURL}
		if caption != "" {
			image["caption"] = caption
		}
		payload["type"] = "image"
		payload["image"] = image
	} else {
		payload["type"] = "text"
		payload["text"] = map[string]any{"preview_url": true, "body": caption}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)

	var out struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	endpoint := fmt.Sprintf("%s/%s/messages", graphBaseURL, accountRef)
	if err := platformapi.PostJSON(ctx, s.httpClient, model.PlatformWhatsApp, endpoint, header, payload, &out, parseError); err != nil {
		return "", err
	}
	if len(out.Messages) == 0 {
		return "", &platformapi.Error{Platform: model.PlatformWhatsApp, StatusCode: 502, Message: "no message id in response"}
	}

	logger.GetLogger().WithField("messageId", out.Messages[0].ID).Info("Sent via WhatsApp")
	return out.Messages[0].ID, nil
}

func parseError(_ int, body []byte) *platformapi.Error {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}
	if parsed.Error.Message == "" && parsed.Error.Code == 0 {
		return nil
	}
	return &platformapi.Error{Code: parsed.Error.Code, Message: parsed.Error.Message}
}
