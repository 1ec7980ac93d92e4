package http

import (
	"net/http"
	"strconv"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// authUserID extracts the authenticated user id set by the auth middleware.
func authUserID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.GetString("user_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type IPostHandler interface {
	Schedule(ctx *gin.Context)
	List(ctx *gin.Context)
	Get(ctx *gin.Context)
	Cancel(ctx *gin.Context)
}

type PostHandler struct {
	posts repository.IScheduledPost
}

func NewPostHandler(posts repository.IScheduledPost) IPostHandler {
	return &PostHandler{posts: posts}
}

type scheduleRequest struct {
	ImageID      *int64   `json:"image_id"`
	MediaID      *int64   `json:"media_id"`
	VideoURL     *string  `json:"video_url"`
	Caption      string   `json:"caption"`
	Platforms    []string `json:"platforms" binding:"required"`
	ScheduledFor string   `json:"scheduled_for" binding:"required"`
}

func (h *PostHandler) Schedule(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	var req scheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	platforms := make([]model.Platform, 0, len(req.Platforms))
	for _, raw := range req.Platforms {
		p, ok := model.ParsePlatform(raw)
		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + raw})
			return
		}
		platforms = append(platforms, p)
	}
	if len(platforms) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "at least one platform required"})
		return
	}

	scheduledFor, err := time.Parse(time.RFC3339, req.ScheduledFor)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_for must be RFC3339"})
		return
	}
	if scheduledFor.Before(time.Now()) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_for must be in the future"})
		return
	}

	post := &model.ScheduledPost{
		UserID:       userID,
		ImageID:      req.ImageID,
		MediaID:      req.MediaID,
		VideoURL:     req.VideoURL,
		Caption:      req.Caption,
		Platforms:    platforms,
		ScheduledFor: scheduledFor.UTC(),
		Status:       model.PostStatusScheduled,
	}
	created, err := h.posts.Create(ctx.Request.Context(), post)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err).Error("Failed to schedule post")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule post"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"post": created})
}

func (h *PostHandler) List(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	limit := 50
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	posts, err := h.posts.ListByUser(ctx.Request.Context(), userID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if posts == nil {
		posts = []*model.ScheduledPost{}
	}
	ctx.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) Get(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	id, err := strconv.ParseInt(ctx.Param("postId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	post, err := h.posts.GetByID(ctx.Request.Context(), id)
	if err != nil || post == nil || post.UserID != userID {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) Cancel(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	id, err := strconv.ParseInt(ctx.Param("postId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	if err := h.posts.Cancel(ctx.Request.Context(), id, userID); err != nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "post cannot be cancelled"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cancelled": true, "post_id": id})
}
