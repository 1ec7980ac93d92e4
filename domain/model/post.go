package model

import (
	"strings"
	"time"
)

// Platform identifies a supported social network.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformWhatsApp  Platform = "whatsapp"
)

// AllPlatforms lists every platform the executor can dispatch to.
var AllPlatforms = []Platform{PlatformFacebook, PlatformInstagram, PlatformTikTok, PlatformWhatsApp}

// ParsePlatform normalizes a platform name. Returns false for unknown values.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformTikTok, PlatformWhatsApp:
		return p, true
	}
	return "", false
}

// PostStatus is the lifecycle state of a scheduled post.
type PostStatus string

const (
	PostStatusDraft           PostStatus = "draft"
	PostStatusPendingApproval PostStatus = "pending_approval"
	PostStatusApproved        PostStatus = "approved"
	PostStatusScheduled       PostStatus = "scheduled"
	PostStatusPublished       PostStatus = "published"
	PostStatusFailed          PostStatus = "failed"
	PostStatusCancelled       PostStatus = "cancelled"
)

// Terminal reports whether the status can never re-enter execution.
func (s PostStatus) Terminal() bool {
	return s == PostStatusPublished || s == PostStatusFailed || s == PostStatusCancelled
}

// ScheduledPost is one user request to publish content to one or more platforms.
// Only the executor mutates a post once it is eligible; the row in the store is
// the single source of truth.
type ScheduledPost struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	ImageID      *int64     `json:"image_id,omitempty"`
	MediaID      *int64     `json:"media_id,omitempty"`
	VideoURL     *string    `json:"video_url,omitempty"`
	Caption      string     `json:"caption"`
	Platforms    []Platform `json:"platforms"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Status       PostStatus `json:"status"`
	RetryCount   int        `json:"retry_count"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	// Platform post ids, populated after a successful publish on each network.
	FacebookPostID    *string   `json:"facebook_post_id,omitempty"`
	InstagramPostID   *string   `json:"instagram_post_id,omitempty"`
	TikTokPostID      *string   `json:"tiktok_post_id,omitempty"`
	WhatsAppMessageID *string   `json:"whatsapp_message_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// JoinPlatforms serializes the platform set for storage (comma separated).
func JoinPlatforms(platforms []Platform) string {
	parts := make([]string, 0, len(platforms))
	for _, p := range platforms {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, ",")
}

// SplitPlatforms parses a stored platform column, dropping unknown entries.
func SplitPlatforms(s string) []Platform {
	var out []Platform
	for _, part := range strings.Split(s, ",") {
		if p, ok := ParsePlatform(part); ok {
			out = append(out, p)
		}
	}
	return out
}
