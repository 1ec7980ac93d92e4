package platformapi

import (
	"errors"
	"fmt"

	"postpilot/domain/model"
)

// FriendlyMessage maps a raw publish failure to a message suitable for storing
// on the post and showing to the user. It never changes control flow; retry
// decisions are made on the HTTP status alone.
func FriendlyMessage(err error, platform model.Platform) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if err.Error() != "" {
			return err.Error()
		}
		return "An unexpected error occurred."
	}

	if apiErr.StatusCode == 429 {
		return fmt.Sprintf("Rate limit reached on %s. Please wait a few minutes before trying again.", platform)
	}

	switch platform {
	case model.PlatformInstagram, model.PlatformFacebook:
		return metaMessage(apiErr)
	case model.PlatformTikTok:
		return tiktokMessage(apiErr)
	case model.PlatformWhatsApp:
		return whatsappMessage(apiErr)
	default:
		if apiErr.StatusCode == 0 {
			return fmt.Sprintf("Error on %s: no connection.", platform)
		}
		return fmt.Sprintf("Error on %s: %d.", platform, apiErr.StatusCode)
	}
}

func metaMessage(e *Error) string {
	switch {
	case e.Code == 190:
		return "Your Facebook/Instagram session has expired. Please reconnect your account."
	case e.Code == 368:
		return "Action temporarily blocked by Facebook on suspicion of spam."
	case e.Subcode == 2207027:
		return "The image does not meet Instagram's aspect ratio requirements (use 1:1 or 4:5)."
	case e.Code == 10:
		return "Insufficient permissions. Check that you authorized content publishing."
	case e.Message != "":
		return e.Message
	}
	return "Meta API error."
}

func tiktokMessage(e *Error) string {
	switch {
	case e.Code == 10006:
		return "TikTok token is invalid or expired."
	case e.Code == 40007:
		return "The video is too short or invalid for TikTok."
	case e.Message != "":
		return e.Message
	}
	return "TikTok API error."
}

func whatsappMessage(e *Error) string {
	switch {
	case e.Code == 131030:
		return "The recipient phone number is invalid."
	case e.Code == 131026:
		return "Message not delivered: the recipient has not messaged this number in the last 24 hours."
	case e.Message != "":
		return e.Message
	}
	return "WhatsApp API error."
}
