package realtime

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"postpilot/domain/model"

	"github.com/gin-gonic/gin"
)

// ExecutionEvent is the SSE payload emitted after each publish attempt.
type ExecutionEvent struct {
	Type       string  `json:"type"`
	PostID     int64   `json:"post_id"`
	Platform   string  `json:"platform"`
	Status     string  `json:"status"`
	PostRef    *string `json:"post_ref,omitempty"`
	Error      *string `json:"error,omitempty"`
	RetryCount int     `json:"retry_count"`
}

// Hub maintains per-user subscribers listening for execution events.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan ExecutionEvent]struct{}
}

func NewExecutionHub() *Hub {
	return &Hub{users: make(map[string]map[chan ExecutionEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan ExecutionEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	// Initial comment to keep connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	notify := c.Writer.CloseNotify()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: execution_status\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan ExecutionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan ExecutionEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan ExecutionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// BroadcastAttempt broadcasts one publish attempt outcome to all subscribers
// of the owning user.
func (h *Hub) BroadcastAttempt(userID int64, entry *model.ExecutionLogEntry, postRef string) {
	if h == nil || entry == nil {
		return
	}
	evt := ExecutionEvent{
		Type:       "execution_status",
		PostID:     entry.PostID,
		Platform:   string(entry.Platform),
		Status:     string(entry.Status),
		RetryCount: entry.RetryCount,
	}
	if postRef != "" {
		evt.PostRef = &postRef
	}
	if entry.Status != model.AttemptSuccess && entry.Message != "" {
		msg := entry.Message
		evt.Error = &msg
	}
	key := strconv.FormatInt(userID, 10)
	h.mu.RLock()
	subs := h.users[key]
	for ch := range subs {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
