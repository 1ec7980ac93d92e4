package model

import "time"

// GeneratedMedia is a ready-to-publish artifact produced by the content
// pipeline (image or video). The executor only needs its public URL.
type GeneratedMedia struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	VideoURL  string    `json:"video_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// URL returns the usable media URL, preferring image over video.
func (m *GeneratedMedia) URL() string {
	if m == nil {
		return ""
	}
	if m.ImageURL != "" {
		return m.ImageURL
	}
	return m.VideoURL
}
