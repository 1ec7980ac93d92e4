package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postpilot/domain/model"
	"postpilot/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAudit struct {
	entries []*model.ExecutionLogEntry
}

func (s *stubAudit) InsertEntries(_ context.Context, entries []*model.ExecutionLogEntry) error {
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *stubAudit) Recent(_ context.Context, limit int) ([]*model.ExecutionLogEntry, error) {
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	return s.entries[:limit], nil
}

func archiveRequest(t *testing.T, h IExecutionHandler) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/execution/archive", nil)
	h.Archive(ctx)
	return w
}

func TestArchiveUnavailableWithoutAuditStore(t *testing.T) {
	h := NewExecutionHandler(usecase.NewExecutionLedger(), nil, nil)

	w := archiveRequest(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "execution archive not configured")
}

func TestArchiveReadsAuditStore(t *testing.T) {
	audit := &stubAudit{entries: []*model.ExecutionLogEntry{{
		PostID:    7,
		Platform:  model.PlatformFacebook,
		Status:    model.AttemptSuccess,
		Message:   "published",
		Timestamp: time.Now().UTC(),
	}}}
	h := NewExecutionHandler(usecase.NewExecutionLedger(), nil, audit)

	w := archiveRequest(t, h)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"post_id":7`)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}
