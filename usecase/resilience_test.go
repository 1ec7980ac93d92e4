package usecase

import (
	"context"
	"testing"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/clients/platformapi"
	"postpilot/infrastructure/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func plainCipher() *security.Cipher { return security.NewCipher("") }

func newCaller(tokens *TokenManager, sleeps *[]time.Duration) *ResilientCaller {
	sleep := func(d time.Duration) {
		if sleeps != nil {
			*sleeps = append(*sleeps, d)
		}
	}
	return NewResilientCaller(tokens, plainCipher(), DefaultRetryConfig(), sleep)
}

func serverError() *platformapi.Error {
	return &platformapi.Error{Platform: model.PlatformFacebook, StatusCode: 503, Message: "upstream unavailable"}
}

func TestWithRetryBackoffSequence(t *testing.T) {
	var sleeps []time.Duration
	caller := newCaller(nil, &sleeps)
	cred := &model.PlatformCredential{ID: 1, Platform: model.PlatformFacebook, AccessToken: "token"}

	calls := 0
	_, err := caller.Call(context.Background(), cred, func(string) (string, error) {
		calls++
		return "", serverError()
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, sleeps)
}

func TestWithRetryRecoversMidSequence(t *testing.T) {
	var sleeps []time.Duration
	caller := newCaller(nil, &sleeps)
	cred := &model.PlatformCredential{ID: 1, Platform: model.PlatformFacebook, AccessToken: "token"}

	calls := 0
	result, err := caller.Call(context.Background(), cred, func(string) (string, error) {
		calls++
		if calls < 3 {
			return "", serverError()
		}
		return "post-123", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "post-123", result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
}

func TestWithRetryDoesNotRetryClientErrors(t *testing.T) {
	var sleeps []time.Duration
	caller := newCaller(nil, &sleeps)
	cred := &model.PlatformCredential{ID: 1, Platform: model.PlatformFacebook, AccessToken: "token"}

	for _, status := range []int{400, 403, 429} {
		calls := 0
		_, err := caller.Call(context.Background(), cred, func(string) (string, error) {
			calls++
			return "", &platformapi.Error{Platform: model.PlatformFacebook, StatusCode: status}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls, "status %d must not be retried", status)
	}
	assert.Empty(t, sleeps)
}

func TestCallRefreshesOnceOn401(t *testing.T) {
	creds := new(MockCredentialRepo)
	refresher := new(MockRefresher)
	refresher.On("Refresh", mock.Anything, "stale-token", "").
		Return(&model.RefreshedToken{AccessToken: "fresh-token", ExpiresAt: time.Now().Add(time.Hour)}, nil).
		Once()
	creds.On("UpdateTokens", mock.Anything, int64(1), "fresh-token", (*string)(nil), mock.Anything).
		Return(nil).
		Once()

	tokens := NewTokenManager(creds, plainCipher(), map[model.Platform]repository.ITokenRefresher{
		model.PlatformFacebook: refresher,
	})
	caller := newCaller(tokens, nil)
	cred := &model.PlatformCredential{ID: 1, Platform: model.PlatformFacebook, AccessToken: "stale-token"}

	var tokensSeen []string
	result, err := caller.Call(context.Background(), cred, func(token string) (string, error) {
		tokensSeen = append(tokensSeen, token)
		if token == "stale-token" {
			return "", &platformapi.Error{Platform: model.PlatformFacebook, StatusCode: 401, Code: 190}
		}
		return "post-456", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "post-456", result)
	assert.Equal(t, []string{"stale-token", "fresh-token"}, tokensSeen)
	refresher.AssertExpectations(t)
	creds.AssertExpectations(t)
}

func TestCallSurfacesOriginal401WhenRefreshFails(t *testing.T) {
	creds := new(MockCredentialRepo)
	refresher := new(MockRefresher)
	refresher.On("Refresh", mock.Anything, "stale-token", "").
		Return(nil, assert.AnError).
		Once()

	tokens := NewTokenManager(creds, plainCipher(), map[model.Platform]repository.ITokenRefresher{
		model.PlatformFacebook: refresher,
	})
	caller := newCaller(tokens, nil)
	cred := &model.PlatformCredential{ID: 1, Platform: model.PlatformFacebook, AccessToken: "stale-token"}

	original := &platformapi.Error{Platform: model.PlatformFacebook, StatusCode: 401, Code: 190, Message: "expired"}
	calls := 0
	_, err := caller.Call(context.Background(), cred, func(string) (string, error) {
		calls++
		return "", original
	})

	require.Error(t, err)
	assert.Equal(t, original, err)
	assert.Equal(t, 1, calls)
	refresher.AssertExpectations(t)
	creds.AssertNotCalled(t, "UpdateTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCallNoSecondRefreshWhenRetryStill401(t *testing.T) {
	creds := new(MockCredentialRepo)
	refresher := new(MockRefresher)
	refresher.On("Refresh", mock.Anything, "stale-token", "").
		Return(&model.RefreshedToken{AccessToken: "fresh-token"}, nil).
		Once()
	creds.On("UpdateTokens", mock.Anything, int64(1), "fresh-token", (*string)(nil), (*time.Time)(nil)).
		Return(nil).
		Once()

	tokens := NewTokenManager(creds, plainCipher(), map[model.Platform]repository.ITokenRefresher{
		model.PlatformFacebook: refresher,
	})
	caller := newCaller(tokens, nil)
	cred := &model.PlatformCredential{ID: 1, Platform: model.PlatformFacebook, AccessToken: "stale-token"}

	calls := 0
	_, err := caller.Call(context.Background(), cred, func(string) (string, error) {
		calls++
		return "", &platformapi.Error{Platform: model.PlatformFacebook, StatusCode: 401}
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	refresher.AssertNumberOfCalls(t, "Refresh", 1)
}

func TestTokenManagerUnsupportedPlatform(t *testing.T) {
	tokens := NewTokenManager(new(MockCredentialRepo), plainCipher(), map[model.Platform]repository.ITokenRefresher{})

	_, err := tokens.RefreshCredential(context.Background(), &model.PlatformCredential{
		ID: 9, Platform: model.PlatformWhatsApp, AccessToken: "permanent",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestTokenManagerRotatesRefreshToken(t *testing.T) {
	creds := new(MockCredentialRepo)
	refresher := new(MockRefresher)
	oldRefresh := "old-refresh"
	refresher.On("Refresh", mock.Anything, "stale", "old-refresh").
		Return(&model.RefreshedToken{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresAt: time.Now().Add(24 * time.Hour)}, nil).
		Once()
	creds.On("UpdateTokens", mock.Anything, int64(3), "new-access", mock.MatchedBy(func(rt *string) bool {
		return rt != nil && *rt == "new-refresh"
	}), mock.Anything).Return(nil).Once()

	tokens := NewTokenManager(creds, plainCipher(), map[model.Platform]repository.ITokenRefresher{
		model.PlatformTikTok: refresher,
	})

	newToken, err := tokens.RefreshCredential(context.Background(), &model.PlatformCredential{
		ID: 3, Platform: model.PlatformTikTok, AccessToken: "stale", RefreshToken: &oldRefresh,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-access", newToken)
	creds.AssertExpectations(t)
}
