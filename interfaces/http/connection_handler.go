package http

import (
	"net/http"
	"strconv"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

type IConnectionHandler interface {
	List(ctx *gin.Context)
	Disconnect(ctx *gin.Context)
}

// ConnectionHandler exposes the user's connected platform accounts. Tokens
// never leave the store; only account metadata is returned.
type ConnectionHandler struct {
	creds repository.IPlatformCredential
}

func NewConnectionHandler(creds repository.IPlatformCredential) IConnectionHandler {
	return &ConnectionHandler{creds: creds}
}

func (h *ConnectionHandler) List(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	creds, err := h.creds.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if creds == nil {
		creds = []*model.PlatformCredential{}
	}
	ctx.JSON(http.StatusOK, gin.H{"connections": creds})
}

func (h *ConnectionHandler) Disconnect(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	id, err := strconv.ParseInt(ctx.Param("credentialId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid credential id"})
		return
	}
	cred, err := h.creds.GetByID(ctx.Request.Context(), id)
	if err != nil || cred == nil || cred.UserID != userID {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "connection not found"})
		return
	}
	if err := h.creds.Deactivate(ctx.Request.Context(), id); err != nil {
		logger.GetLogger().WithField("credential_id", id).WithField("error", err).Error("Failed to deactivate credential")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disconnect"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"disconnected": true, "platform": cred.Platform})
}
