package usecase

import (
	"context"
	"time"

	"postpilot/domain/model"

	"github.com/stretchr/testify/mock"
)

// Mock implementations shared by the usecase tests.

type MockScheduledPostRepo struct {
	mock.Mock
}

func (m *MockScheduledPostRepo) Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledPost), args.Error(1)
}

func (m *MockScheduledPostRepo) GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledPost), args.Error(1)
}

func (m *MockScheduledPostRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.ScheduledPost, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledPost), args.Error(1)
}

func (m *MockScheduledPostRepo) FindDue(ctx context.Context, now time.Time) ([]*model.ScheduledPost, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledPost), args.Error(1)
}

func (m *MockScheduledPostRepo) MarkPublished(ctx context.Context, id int64, publishedAt time.Time, postIDs map[model.Platform]string, errMsg *string) error {
	args := m.Called(ctx, id, publishedAt, postIDs, errMsg)
	return args.Error(0)
}

func (m *MockScheduledPostRepo) Reschedule(ctx context.Context, id int64, retryCount int, nextAt time.Time, errMsg string) error {
	args := m.Called(ctx, id, retryCount, nextAt, errMsg)
	return args.Error(0)
}

func (m *MockScheduledPostRepo) MarkFailed(ctx context.Context, id int64, retryCount int, errMsg string) error {
	args := m.Called(ctx, id, retryCount, errMsg)
	return args.Error(0)
}

func (m *MockScheduledPostRepo) Cancel(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockCredentialRepo struct {
	mock.Mock
}

func (m *MockCredentialRepo) GetByID(ctx context.Context, id int64) (*model.PlatformCredential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformCredential), args.Error(1)
}

func (m *MockCredentialRepo) GetActive(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformCredential, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformCredential), args.Error(1)
}

func (m *MockCredentialRepo) ListByUser(ctx context.Context, userID int64) ([]*model.PlatformCredential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformCredential), args.Error(1)
}

func (m *MockCredentialRepo) Upsert(ctx context.Context, cred *model.PlatformCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepo) UpdateTokens(ctx context.Context, id int64, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	args := m.Called(ctx, id, accessToken, refreshToken, expiresAt)
	return args.Error(0)
}

func (m *MockCredentialRepo) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMediaRepo struct {
	mock.Mock
}

func (m *MockMediaRepo) GetImageByID(ctx context.Context, id, userID int64) (*model.GeneratedMedia, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeneratedMedia), args.Error(1)
}

func (m *MockMediaRepo) GetMediaByID(ctx context.Context, id, userID int64) (*model.GeneratedMedia, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeneratedMedia), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
	platform model.Platform
}

func (m *MockPublisher) Platform() model.Platform {
	return m.platform
}

func (m *MockPublisher) Publish(ctx context.Context, accessToken, mediaURL, caption, accountRef string) (string, error) {
	args := m.Called(ctx, accessToken, mediaURL, caption, accountRef)
	return args.String(0), args.Error(1)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context, accessToken, refreshToken string) (*model.RefreshedToken, error) {
	args := m.Called(ctx, accessToken, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshedToken), args.Error(1)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) InsertEntries(ctx context.Context, entries []*model.ExecutionLogEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockAudit) Recent(ctx context.Context, limit int) ([]*model.ExecutionLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ExecutionLogEntry), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
