package model

// Notification is a best-effort outbound signal emitted on terminal success,
// partial success and permanent failure. Delivery is not guaranteed.
type Notification struct {
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
