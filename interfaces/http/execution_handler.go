package http

import (
	"net/http"
	"strconv"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/usecase"

	"github.com/gin-gonic/gin"
)

type IExecutionHandler interface {
	History(ctx *gin.Context)
	Stats(ctx *gin.Context)
	Run(ctx *gin.Context)
	Archive(ctx *gin.Context)
}

// ExecutionHandler exposes the in-memory execution ledger and the manual
// trigger (admin/dev utility).
type ExecutionHandler struct {
	ledger    *usecase.ExecutionLedger
	scheduler *usecase.Scheduler
	audit     repository.IExecutionAudit
}

func NewExecutionHandler(ledger *usecase.ExecutionLedger, scheduler *usecase.Scheduler, audit repository.IExecutionAudit) IExecutionHandler {
	return &ExecutionHandler{ledger: ledger, scheduler: scheduler, audit: audit}
}

func historyLimit(ctx *gin.Context) int {
	limit := 100
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	return limit
}

func (h *ExecutionHandler) History(ctx *gin.Context) {
	entries := h.ledger.Recent(historyLimit(ctx))
	if entries == nil {
		entries = []*model.ExecutionLogEntry{}
	}
	ctx.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *ExecutionHandler) Stats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.ledger.Stats())
}

// Run triggers one execution pass immediately. A pass already in flight is
// never doubled up; the caller is told it was skipped.
func (h *ExecutionHandler) Run(ctx *gin.Context) {
	ran := h.scheduler.RunOnce(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"ran": ran})
}

// Archive reads the durable audit trail (Mongo), which survives restarts
// unlike the in-memory ledger.
func (h *ExecutionHandler) Archive(ctx *gin.Context) {
	if h.audit == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "execution archive not configured"})
		return
	}
	entries, err := h.audit.Recent(ctx.Request.Context(), historyLimit(ctx))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []*model.ExecutionLogEntry{}
	}
	ctx.JSON(http.StatusOK, gin.H{"history": entries})
}
